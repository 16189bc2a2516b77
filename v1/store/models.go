package store

import "time"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// User owns documents and chat sessions. Authentication lives outside this service,
// so rows are created on first sight of a user id.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is an ingested text. IsProcessed becomes true once every chunk is
// embedded and stored.
type Document struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	Title        string          `gorm:"size:200;not null" json:"title"`
	Content      string          `gorm:"type:text;not null" json:"content"`
	FilePath     *string         `gorm:"size:500" json:"file_path"`
	FileType     *string         `gorm:"size:50" json:"file_type"`
	ChunkSize    int             `gorm:"default:1000" json:"chunk_size"`
	ChunkOverlap int             `gorm:"default:200" json:"chunk_overlap"`
	IsProcessed  bool            `gorm:"default:false" json:"is_processed"`
	OwnerID      int64           `gorm:"index;not null" json:"owner_id"`
	Owner        *User           `gorm:"foreignKey:OwnerID" json:"-"`
	Chunks       []DocumentChunk `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DocumentChunk is one chunk of a document. EmbeddingID is the id of its point in
// the shared vector collection.
type DocumentChunk struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ChunkIndex  int       `gorm:"not null" json:"chunk_index"`
	EmbeddingID string    `gorm:"size:100" json:"embedding_id"`
	DocumentID  int64     `gorm:"index;not null" json:"document_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type ChatSession struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	Title     string        `gorm:"size:200" json:"title"`
	UserID    int64         `gorm:"index;not null" json:"user_id"`
	User      *User         `gorm:"foreignKey:UserID" json:"-"`
	Messages  []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type ChatMessage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	SessionID int64     `gorm:"index;not null" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Models lists every table for migrations, parents first.
func Models() []interface{} {
	return []interface{}{&User{}, &Document{}, &DocumentChunk{}, &ChatSession{}, &ChatMessage{}}
}
