package domain

import "time"

type OperatorRole string

const (
	OperatorRoleOperator   OperatorRole = "operator"
	OperatorRoleSupervisor OperatorRole = "supervisor"
)

func (r OperatorRole) Valid() bool {
	return r == OperatorRoleOperator || r == OperatorRoleSupervisor
}

type CertificateStatus string

const (
	CertificateStatusRegular CertificateStatus = "regular"
	CertificateStatusWarning CertificateStatus = "warning"
	CertificateStatusExpired CertificateStatus = "expired"
)

// Operator is a forklift driver. ASO is the occupational health certificate and NR the
// NR-11 equipment training certificate; both statuses derive from their expiration dates.
type Operator struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Registration      string            `json:"registration"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Role              OperatorRole      `json:"role"`
	Status            UserStatus        `json:"status"`
	ASOExpirationDate time.Time         `json:"aso_expiration_date"`
	NRExpirationDate  time.Time         `json:"nr_expiration_date"`
	ASOStatus         CertificateStatus `json:"aso_status"`
	NRStatus          CertificateStatus `json:"nr_status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
