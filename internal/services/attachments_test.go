package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.png":              "photo.png",
		"../../etc/passwd":       "passwd",
		`C:\Users\me\scan 1.pdf`: "scan_1.pdf",
		"  my  family photo.JPG": "my_family_photo.JPG",
		"..hidden.gif":           "hidden.gif",
		"fotografie-ă.jpeg":      "fotografie-.jpeg",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestAttachmentName(t *testing.T) {
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	name, err := AttachmentName(FieldFamilyPhoto, "../Family Pic.PNG", now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^familyPhoto_Family_Pic_20240304050607_[0-9a-f]{8}\.png$`), name)

	_, err = AttachmentName(FieldMemberSignature, "sign.exe", now)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "File type not allowed for memberSignature", err.Error())

	_, err = AttachmentName(FieldMemberSignature, "noextension", now)
	assert.Error(t, err)
}

func TestLocalAttachments(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalAttachments(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := local.Put(ctx, "a.png", "image/png", bytes.NewBufferString("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "a.png", ref)
	assert.Equal(t, "/uploads/a.png", local.URL(ref))

	content, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, local.Delete(ctx, "a.png"))
	require.NoError(t, local.Delete(ctx, "a.png"))
	_, err = os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, os.IsNotExist(err))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func newIntake(t *testing.T, s *store.MemoryStore) (MembershipIntake, string) {
	t.Helper()
	dir := t.TempDir()
	local, err := NewLocalAttachments(dir)
	require.NoError(t, err)
	return MembershipIntake{
		Workflow:    NewMembershipWorkflow(newDeps(s)),
		Attachments: local,
		Now:         func() time.Time { return fixedNow },
	}, dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestMembershipIntake_StoresAttachments(t *testing.T) {
	s := store.NewMemoryStore()
	intake, dir := newIntake(t, s)
	ctx := context.Background()

	result, err := intake.Submit(ctx, models.Membership{Name: "Jane", Phone: "1234567890"}, []Upload{
		{Field: FieldFamilyPhoto, Filename: "family.jpg", Body: bytes.NewBufferString("jpg")},
		{Field: FieldMemberSignature, Filename: "", Body: bytes.NewBufferString("ignored")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.PendingID)
	require.Contains(t, result.URLs, FieldFamilyPhoto)
	assert.NotContains(t, result.URLs, FieldMemberSignature)

	pending := store.NewCollection[models.Membership](s, store.PendingMembers).Load(ctx)
	require.Len(t, pending, 1)
	stored := pending[0].Files[FieldFamilyPhoto]
	assert.Equal(t, "/uploads/"+stored, result.URLs[FieldFamilyPhoto])
	assert.Equal(t, []string{stored}, listDir(t, dir))
}

func TestMembershipIntake_ValidationStoresNothing(t *testing.T) {
	s := store.NewMemoryStore()
	intake, dir := newIntake(t, s)

	_, err := intake.Submit(context.Background(), models.Membership{Name: "Jane", Phone: "1"}, []Upload{
		{Field: FieldFamilyPhoto, Filename: "family.jpg", Body: bytes.NewBufferString("jpg")},
	})
	require.Error(t, err)
	assert.Equal(t, "Phone must be 10 digits", err.Error())
	assert.Empty(t, listDir(t, dir))
}

func TestMembershipIntake_CleansUpOnFailure(t *testing.T) {
	cases := []struct {
		name    string
		uploads func() []Upload
		setup   func(*store.MemoryStore)
		isErr   error
	}{
		{
			name: "disallowed second file",
			uploads: func() []Upload {
				return []Upload{
					{Field: FieldFamilyPhoto, Filename: "family.jpg", Body: bytes.NewBufferString("jpg")},
					{Field: FieldMemberSignature, Filename: "sign.exe", Body: bytes.NewBufferString("exe")},
				}
			},
			isErr: ErrValidation,
		},
		{
			name: "broken upload stream",
			uploads: func() []Upload {
				return []Upload{
					{Field: FieldFamilyPhoto, Filename: "family.jpg", Body: bytes.NewBufferString("jpg")},
					{Field: FieldMemberSignature, Filename: "sign.png", Body: io.Reader(failingReader{})},
				}
			},
			isErr: ErrStoreWrite,
		},
		{
			name: "pending save fails",
			uploads: func() []Upload {
				return []Upload{{Field: FieldFamilyPhoto, Filename: "family.jpg", Body: bytes.NewBufferString("jpg")}}
			},
			setup: func(s *store.MemoryStore) { s.FailSaves(store.PendingMembers, errors.New("disk full")) },
			isErr: ErrStoreWrite,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			if tc.setup != nil {
				tc.setup(s)
			}
			intake, dir := newIntake(t, s)
			_, err := intake.Submit(context.Background(), models.Membership{Name: "Jane", Phone: "1234567890"}, tc.uploads())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.isErr)
			assert.Empty(t, listDir(t, dir))
			assert.Nil(t, s.Raw(store.PendingMembers))
		})
	}
}
