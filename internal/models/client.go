package models

// ClientStatus represents a client's position in the sales pipeline.
type ClientStatus string

const (
	// ClientPending is the intake-only status: the client came in through
	// the public form and no broker has been assigned yet.
	ClientPending ClientStatus = "pending"

	ClientNew            ClientStatus = "new"
	ClientInService      ClientStatus = "in_service"
	ClientDocumentReview ClientStatus = "document_review"
	ClientBankReview     ClientStatus = "bank_review"
	ClientApproved       ClientStatus = "approved"
	ClientConditioned    ClientStatus = "conditioned"
	ClientRejected       ClientStatus = "rejected"
	ClientSaleCompleted  ClientStatus = "sale_completed"
	ClientRescinded      ClientStatus = "rescinded"
)

// WorkingStatuses are the pipeline stages a client can be moved between on
// the kanban board. Pending is deliberately absent: it is only reachable
// through public intake and only left through broker assignment.
var WorkingStatuses = []ClientStatus{
	ClientNew,
	ClientInService,
	ClientDocumentReview,
	ClientBankReview,
	ClientApproved,
	ClientConditioned,
	ClientRejected,
	ClientSaleCompleted,
	ClientRescinded,
}

// IsWorking reports whether s is one of the nine kanban stages.
func (s ClientStatus) IsWorking() bool {
	for _, w := range WorkingStatuses {
		if s == w {
			return true
		}
	}
	return false
}

// SchedulingStatus mirrors the lifecycle status of the client's most recent
// appointment. It is denormalized onto the client row so list screens do
// not need a join; the engine keeps it in sync.
type SchedulingStatus string

const (
	SchedulingAwaiting     SchedulingStatus = "awaiting"
	SchedulingCompleted    SchedulingStatus = "completed"
	SchedulingNotCompleted SchedulingStatus = "not_completed"
)

// Client represents a buyer or seller moving through the sales pipeline.
type Client struct {
	BaseModel
	FirstName        string            `gorm:"size:100;not null" json:"firstName"`
	LastName         string            `gorm:"size:100" json:"lastName"`
	Email            string            `gorm:"size:255" json:"email"`
	PhoneNumber      string            `gorm:"size:30" json:"phoneNumber"`
	Status           ClientStatus      `gorm:"size:30;default:'pending';index" json:"status"`
	BrokerID         *string           `gorm:"size:36;index" json:"brokerId"`
	SchedulingStatus *SchedulingStatus `gorm:"size:20" json:"schedulingStatus"`
	Origin           string            `gorm:"size:100" json:"origin"` // acquisition channel: site, referral, ...
	Notes            string            `gorm:"type:text" json:"notes"`

	// Relations
	Broker       *User            `gorm:"foreignKey:BrokerID" json:"-"`
	Appointments []Appointment    `gorm:"foreignKey:ClientID" json:"-"`
	Documents    []ClientDocument `gorm:"foreignKey:ClientID" json:"-"`
}
