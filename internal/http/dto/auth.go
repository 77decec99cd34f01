// Package dto define los cuerpos JSON de request/response.
package dto

import (
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
)

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       *int   `json:"age,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	UID     string  `json:"uid"`
	Profile Profile `json:"profile"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProviderLoginRequest acepta la prueba que corresponda al provider.
type ProviderLoginRequest struct {
	Code        string `json:"code,omitempty"`
	IDToken     string `json:"idToken,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	Nonce       string `json:"nonce,omitempty"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	UID       string    `json:"uid"`
	ExpiresAt time.Time `json:"expiresAt"`
	Profile   Profile   `json:"profile"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Profile es la vista pública del perfil. Nunca incluye el hash.
type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Provider      string    `json:"provider"`
	DisplayName   string    `json:"displayName,omitempty"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
	Age           *int      `json:"age,omitempty"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func ProfileFrom(p *repository.Profile) Profile {
	return Profile{
		ID:            p.ID,
		Email:         p.Email,
		Provider:      p.Provider.String(),
		DisplayName:   p.DisplayName,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Age:           p.Age,
		AvatarURL:     p.AvatarURL,
		EmailVerified: p.EmailVerified,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
