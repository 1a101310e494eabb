package domain

import (
	"fmt"
	"time"
)

type ReadingRole string

const (
	ReadingIntroduction ReadingRole = "introduction"
	ReadingClosing      ReadingRole = "closing"
)

func (r ReadingRole) Valid() bool {
	return r == ReadingIntroduction || r == ReadingClosing
}

// Citation identifica un pasaje bíblico. Dos citas son iguales solo si coinciden el libro (sensible a
// mayúsculas) y los cuatro límites.
type Citation struct {
	Book         string `json:"book"`
	StartChapter int32  `json:"startChapter"`
	StartVerse   int32  `json:"startVerse"`
	EndChapter   int32  `json:"endChapter"`
	EndVerse     int32  `json:"endVerse"`
}

func (c Citation) String() string {
	switch {
	case c.StartChapter == c.EndChapter && c.StartVerse == c.EndVerse:
		return fmt.Sprintf("%s %d:%d", c.Book, c.StartChapter, c.StartVerse)
	case c.StartChapter == c.EndChapter:
		return fmt.Sprintf("%s %d:%d-%d", c.Book, c.StartChapter, c.StartVerse, c.EndVerse)
	default:
		return fmt.Sprintf("%s %d:%d-%d:%d", c.Book, c.StartChapter, c.StartVerse, c.EndChapter, c.EndVerse)
	}
}

type ScriptureReading struct {
	Citation

	ID                int64       `json:"id"`
	ServiceID         int64       `json:"serviceID"`
	Role              ReadingRole `json:"role"`
	ReaderID          int64       `json:"readerID"`
	IsRepeat          bool        `json:"isRepeat"`
	OriginalReadingID *int64      `json:"originalReadingID"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// ReadingDetail es una lectura con los datos del culto y del lector ya resueltos.
type ReadingDetail struct {
	ScriptureReading
	ServiceDate time.Time `json:"serviceDate"`
	ReaderName  string    `json:"readerName"`
}

type ReadingFilter struct {
	Book   string
	Offset int
	Limit  int
}
