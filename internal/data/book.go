// Package data provides the data models and storage logic for the
// library catalog.
package data

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aoideee/library-catalog/internal/validator"
)

// Genres is the closed set of categories a book may be filed under.
var Genres = []string{
	"Fiction",
	"Non-Fiction",
	"Science Fiction",
	"Fantasy",
	"Mystery",
	"Horror",
	"Romance",
	"Classic Fiction",
	"Thriller",
	"Dystopian",
	"Memoir",
	"Biography",
	"Self-Help",
	"Cookbook",
	"Poetry",
	"History",
	"Science",
	"Math",
	"Art",
	"Music",
	"Film",
	"Travel",
	"Sports",
	"Health",
	"Crafts",
	"Other",
}

// Availabilities is the closed set of circulation states for a book.
var Availabilities = []string{
	"Available",
	"Checked Out",
	"Lost",
	"Damaged",
}

// Field length limits, counted in characters.
const (
	minNameLength    = 2
	maxNameLength    = 100
	minSummaryLength = 10
)

// MaxEdition is the largest edition the books.edition integer column holds.
const MaxEdition = math.MaxInt32

// Book represents a single book record stored in the catalog.
// It maps directly to a row in the "books" table.
type Book struct {
	ID              int64  `json:"id"`               // Assigned by the store on insert
	Title           string `json:"title"`            // 2-100 characters
	Author          string `json:"author"`           // 2-100 characters
	Genre           string `json:"genre"`            // One of Genres
	PublicationDate Date   `json:"publication_date"` // Never later than today
	Availability    string `json:"availability"`     // One of Availabilities
	Edition         int    `json:"edition"`          // 1 or greater
	Summary         string `json:"summary"`          // At least 10 characters
}

// Date is a calendar date without a time of day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate returns the calendar date of t in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EditionValue is the raw text a client sent for the edition field. Both
// JSON strings ("3") and numbers (3) are accepted; coercion to an integer
// happens during validation so that bad input is reported as a field error.
type EditionValue string

func (e *EditionValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = EditionValue(s)
		return nil
	}
	*e = EditionValue(bytes.TrimSpace(b))
	return nil
}

// BookInput holds the fields a client may supply when creating or updating
// a book. Every field is a pointer so that "not provided" (nil) can be told
// apart from an empty value; a partial update applies only non-nil fields.
type BookInput struct {
	Title           *string       `json:"title"`
	Author          *string       `json:"author"`
	Genre           *string       `json:"genre"`
	PublicationDate *string       `json:"publication_date"`
	Availability    *string       `json:"availability"`
	Edition         *EditionValue `json:"edition"`
	Summary         *string       `json:"summary"`
}

// ValidateBookInput checks every supplied field of input and copies the
// normalized values onto book. When partial is false all fields are
// required. All failures are recorded in v; book must be discarded by the
// caller unless v.Valid() reports true afterwards.
func ValidateBookInput(v *validator.Validator, input BookInput, now time.Time, book *Book, partial bool) {
	required := func(key string, supplied bool) bool {
		if !supplied && !partial {
			v.AddError(key, "this field is required")
		}
		return supplied
	}

	if required("title", input.Title != nil) {
		book.Title = ValidateName(v, "title", *input.Title)
	}
	if required("author", input.Author != nil) {
		book.Author = ValidateName(v, "author", *input.Author)
	}
	if required("genre", input.Genre != nil) {
		book.Genre = ValidateChoice(v, "genre", *input.Genre, Genres)
	}
	if required("publication_date", input.PublicationDate != nil) {
		book.PublicationDate = ValidatePublicationDate(v, *input.PublicationDate, now)
	}
	if required("availability", input.Availability != nil) {
		book.Availability = ValidateChoice(v, "availability", *input.Availability, Availabilities)
	}
	if required("edition", input.Edition != nil) {
		book.Edition = ValidateEdition(v, string(*input.Edition))
	}
	if required("summary", input.Summary != nil) {
		book.Summary = ValidateSummary(v, *input.Summary)
	}
}

// ValidateName checks a title or author value and returns it trimmed.
func ValidateName(v *validator.Validator, key, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.AddError(key, "must not be blank")
		return value
	}
	n := utf8.RuneCountInString(value)
	v.Check(n >= minNameLength, key, "must be at least 2 characters")
	v.Check(n <= maxNameLength, key, "must not be more than 100 characters")
	return value
}

// ValidateSummary checks a summary value and returns it trimmed.
func ValidateSummary(v *validator.Validator, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.AddError("summary", "must not be blank")
		return value
	}
	v.Check(utf8.RuneCountInString(value) >= minSummaryLength, "summary", "must be at least 10 characters")
	return value
}

// ValidateChoice checks that value is one of choices.
func ValidateChoice(v *validator.Validator, key, value string, choices []string) string {
	v.Check(validator.In(value, choices...), key, strconv.Quote(value)+" is not a valid choice")
	return value
}

// ValidateEdition coerces raw to an integer between 1 and MaxEdition.
func ValidateEdition(v *validator.Validator, raw string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		v.AddError("edition", "must be an integer")
		return 0
	}
	v.Check(n >= 1, "edition", "must be at least 1")
	v.Check(n <= MaxEdition, "edition", "must not be more than 2147483647")
	if n < 1 || n > MaxEdition {
		return 0
	}
	return int(n)
}

// ValidatePublicationDate parses raw as YYYY-MM-DD and rejects dates after
// the calendar day of now.
func ValidatePublicationDate(v *validator.Validator, raw string, now time.Time) Date {
	d, err := ParseDate(strings.TrimSpace(raw))
	if err != nil {
		v.AddError("publication_date", "must be a date in YYYY-MM-DD format")
		return Date{}
	}
	v.Check(!d.After(NewDate(now).Time), "publication_date", "can't be in the future")
	return d
}
