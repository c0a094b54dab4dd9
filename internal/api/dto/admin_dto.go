package dto

// CreateMunicipalityUserRequest is the administrator account-creation payload.
type CreateMunicipalityUserRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
}

// UpdateMunicipalityUserRequest carries optional staff account fields.
type UpdateMunicipalityUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
}
