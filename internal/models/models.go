package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
)

// PaymentIDPlaceholder fills the provider payment id column until the
// order is verified.
const PaymentIDPlaceholder = "pending"

type User struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	IsPremium       bool      `json:"isPremium"`
	GenerationCount int       `json:"generationCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"-"`
}

// Thumbnail is one generated image. OriginalPrompt is what the user typed,
// EnhancedPrompt is what was actually sent to the image model (equal to
// OriginalPrompt when enhancement was skipped or fell back).
type Thumbnail struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	OriginalPrompt string    `json:"originalPrompt"`
	EnhancedPrompt string    `json:"enhancedPrompt"`
	ImageURL       string    `json:"imageUrl"`
	Size           string    `json:"size"`
	Layout         string    `json:"layout"`
	Style          string    `json:"style"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ThumbnailWithOwner joins in the owner's email for admin listings.
type ThumbnailWithOwner struct {
	Thumbnail
	UserEmail string `json:"userEmail"`
}

type Payment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	OrderID   string    `json:"orderId"`
	PaymentID string    `json:"paymentId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// PaymentWithOwner joins in the owner's name and email for admin listings.
type PaymentWithOwner struct {
	Payment
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}
