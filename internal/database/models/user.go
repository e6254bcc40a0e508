package models

// User is a platform account owning one or more stores. Authentication is
// handled by the external auth provider; this record only mirrors identity.
type User struct {
	BaseModel
	Email string `json:"email" gorm:"size:255;not null;uniqueIndex" validate:"required,email"`
	Name  string `json:"name" gorm:"size:100"`

	// Relationships
	Stores []Store `json:"stores,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
