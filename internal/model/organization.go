package model

// Organization is a tenant. All data access is scoped by org id.
type Organization struct {
	Base
	Name               string  `db:"name" json:"name"`
	Timezone           string  `db:"timezone" json:"timezone"`
	WhatsAppInstanceID *string `db:"whatsapp_instance_id" json:"whatsapp_instance_id,omitempty"`
	AlertEmail         *string `db:"alert_email" json:"alert_email,omitempty"`
}
