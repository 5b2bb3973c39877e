package auth

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User maps the pre-existing users table.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Password    string `gorm:"size:255;not null" json:"-"`
	Fullname    string `gorm:"size:255" json:"fullname"`
	Description string `gorm:"type:text" json:"description"`
	Role        string `gorm:"size:20" json:"role"`
}

// ValidRole reports whether role is one of the two known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
