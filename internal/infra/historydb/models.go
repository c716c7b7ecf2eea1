package historydb

import "time"

type AuditRecordModel struct {
	ID        int64     `gorm:"primaryKey"`
	Namespace string    `gorm:"index:idx_ns_epoch;not null"`
	Epoch     uint64    `gorm:"index:idx_ns_epoch;not null"`
	Digest    string    `gorm:"not null"`
	Signature string    `gorm:"not null"`
	Proof     string    `gorm:"not null"`
	Reason    string
	CheckedAt time.Time `gorm:"not null"`
}

func (AuditRecordModel) TableName() string {
	return "audit_records"
}
