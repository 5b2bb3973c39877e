package notifications

// Notification maps the pre-existing notifications table.
type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text" json:"content"`
	Note    string `gorm:"type:text" json:"note"`
}

// FormData feeds notification_form.html.
type FormData struct {
	ActionURL    string
	Notification Notification
}
