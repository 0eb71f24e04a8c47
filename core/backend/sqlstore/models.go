package sqlstore

import "time"

// documentRow is one document of any collection. Seq preserves insertion order.
type documentRow struct {
	Seq          uint      `gorm:"column:seq;primaryKey;autoIncrement"`
	DocumentID   string    `gorm:"column:document_id;size:64;uniqueIndex:idx_documents_key"`
	DatabaseID   string    `gorm:"column:database_id;size:64;uniqueIndex:idx_documents_key"`
	CollectionID string    `gorm:"column:collection_id;size:64;uniqueIndex:idx_documents_key"`
	Data         string    `gorm:"column:data;type:text"` // JSON object
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (documentRow) TableName() string { return "documents" }

type accountRow struct {
	ID           string    `gorm:"column:id;primaryKey;size:64"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex"`
	Name         string    `gorm:"column:name;size:255"`
	PasswordHash string    `gorm:"column:password_hash;size:100"` // bcrypt
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountRow) TableName() string { return "accounts" }

type sessionRow struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	UserID     string    `gorm:"column:user_id;size:64;index"`
	SecretHash string    `gorm:"column:secret_hash;size:64;uniqueIndex"` // sha256 hex
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (sessionRow) TableName() string { return "sessions" }

type recoveryRow struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	UserID     string    `gorm:"column:user_id;size:64;index"`
	SecretHash string    `gorm:"column:secret_hash;size:64"`
	URL        string    `gorm:"column:url;size:1024"`
	Expire     time.Time `gorm:"column:expire"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (recoveryRow) TableName() string { return "recoveries" }

// requiredColumns lists the columns each table must carry after migration.
var requiredColumns = map[string][]string{
	"documents":  {"seq", "document_id", "database_id", "collection_id", "data"},
	"accounts":   {"id", "email", "name", "password_hash"},
	"sessions":   {"id", "user_id", "secret_hash"},
	"recoveries": {"id", "user_id", "secret_hash", "url", "expire"},
}
