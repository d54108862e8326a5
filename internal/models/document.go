package models

// ClientDocument is a document attached to a client (contracts, ID scans,
// bank paperwork). Storage of the file body is handled elsewhere; the
// engine only cares that document rows are removed before their client.
type ClientDocument struct {
	BaseModel
	ClientID string `gorm:"size:36;index;not null" json:"clientId"`
	Name     string `gorm:"size:255;not null" json:"name"`
	FileKey  string `gorm:"size:512" json:"fileKey"`

	Client Client `gorm:"foreignKey:ClientID" json:"-"`
}
