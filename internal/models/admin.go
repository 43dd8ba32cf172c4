package models

// Admin is a back-office account
type Admin struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"unique;not null"`
	Password    string `json:"-" gorm:"not null"`
	DisplayName string `json:"displayName" gorm:"column:display_name"`
	Role        string `json:"role" gorm:"not null;index"`
	Timestamps
}

// TableName specifies the table name for Admin Model
func (Admin) TableName() string {
	return "admins"
}

// Role is a named set of permission grants such as "notes:write" or "notes:*".
type Role struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name" gorm:"unique;not null"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions" gorm:"serializer:json"`
	Timestamps
}

func (Role) TableName() string {
	return "roles"
}
