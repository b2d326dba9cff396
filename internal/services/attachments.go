package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"parish-backend-go/internal/models"

	"github.com/google/uuid"
)

const (
	FieldFamilyPhoto     = "familyPhoto"
	FieldMemberSignature = "memberSignature"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"pdf":  true,
}

// Attachments stores uploaded membership files.
type Attachments interface {
	// Put stores body under name and returns the reference recorded on the
	// membership.
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	// Delete removes the file stored under name.
	Delete(ctx context.Context, name string) error
	// URL turns a stored reference into a link a client can follow.
	URL(ref string) string
}

// Upload is one file received with a membership form.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client supplied filename to a safe base name.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	filename = filepath.Base(filename)
	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	return strings.Trim(filename, "._")
}

// AttachmentName builds the stored name
// <field>_<base>_<yyyymmddhhmmss>_<short id>.<ext>.
func AttachmentName(field, filename string, now time.Time) (string, error) {
	clean := SanitizeFilename(filename)
	dot := strings.LastIndex(clean, ".")
	if dot < 0 {
		return "", BadRequest("File type not allowed for " + field)
	}
	base, ext := clean[:dot], strings.ToLower(clean[dot+1:])
	if !allowedExtensions[ext] {
		return "", BadRequest("File type not allowed for " + field)
	}
	if base == "" {
		base = "file"
	}
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s_%s.%s", field, base, now.UTC().Format("20060102150405"), short, ext), nil
}

// LocalAttachments keeps files in a directory served under /uploads/.
type LocalAttachments struct {
	Dir string
}

func NewLocalAttachments(dir string) (*LocalAttachments, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalAttachments{Dir: dir}, nil
}

func (l *LocalAttachments) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	targetPath := filepath.Join(l.Dir, name)
	file, err := os.Create(targetPath)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(file, body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(targetPath)
		return "", err
	}
	return name, nil
}

func (l *LocalAttachments) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(l.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (l *LocalAttachments) URL(ref string) string {
	return "/uploads/" + ref
}

// MembershipIntake accepts a membership application together with its
// attachments. Stored files are removed again when the application cannot
// be saved.
type MembershipIntake struct {
	Workflow    *MembershipWorkflow
	Attachments Attachments
	Now         func() time.Time
}

type IntakeResult struct {
	PendingID int
	// URLs maps attachment field to a client facing link.
	URLs map[string]string
}

func (in MembershipIntake) Submit(ctx context.Context, m models.Membership, uploads []Upload) (IntakeResult, error) {
	m, err := ValidateMembership(m)
	if err != nil {
		return IntakeResult{}, err
	}
	now := time.Now()
	if in.Now != nil {
		now = in.Now()
	}

	stored := []string{}
	cleanup := func() {
		for _, name := range stored {
			if err := in.Attachments.Delete(ctx, name); err != nil {
				log.Printf("membership attachment cleanup %s: %v", name, err)
			}
		}
	}

	result := IntakeResult{URLs: map[string]string{}}
	for _, upload := range uploads {
		if upload.Filename == "" {
			continue
		}
		name, err := AttachmentName(upload.Field, upload.Filename, now)
		if err != nil {
			cleanup()
			return IntakeResult{}, err
		}
		ref, err := in.Attachments.Put(ctx, name, upload.ContentType, upload.Body)
		if err != nil {
			cleanup()
			log.Printf("membership attachment %s: %v", upload.Field, err)
			return IntakeResult{}, StoreFailure(err)
		}
		stored = append(stored, name)
		m.Files[upload.Field] = ref
		result.URLs[upload.Field] = in.Attachments.URL(ref)
	}

	id, err := in.Workflow.Submit(ctx, m)
	if err != nil {
		cleanup()
		return IntakeResult{}, err
	}
	result.PendingID = id
	return result, nil
}
