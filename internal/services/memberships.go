package services

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/store"
)

var (
	phonePattern  = regexp.MustCompile(`^\d{10}$`)
	aadharPattern = regexp.MustCompile(`^\d{12}$`)
)

type MembershipWorkflow = Workflow[models.Membership]

func NewMembershipWorkflow(deps WorkflowDeps) *MembershipWorkflow {
	return newWorkflow(deps, store.PendingMembers, store.Memberships, kindRules[models.Membership]{
		kind:      "membership",
		validate:  ValidateMembership,
		stamp:     stampMembership,
		summarize: summarizeMembership,
	})
}

// ValidateMembership checks the required fields in a fixed order and returns
// the first failure.
func ValidateMembership(m models.Membership) (models.Membership, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Email = strings.TrimSpace(m.Email)
	m.Aadhar = strings.TrimSpace(m.Aadhar)
	switch {
	case m.Name == "":
		return m, BadRequest("Name is required")
	case !phonePattern.MatchString(m.Phone):
		return m, BadRequest("Phone must be 10 digits")
	case m.Email != "" && !(strings.Contains(m.Email, "@") && strings.Contains(m.Email, ".")):
		return m, BadRequest("Invalid email address")
	case m.Aadhar != "" && !aadharPattern.MatchString(m.Aadhar):
		return m, BadRequest("Aadhar must be 12 digits")
	}
	if m.Children == nil {
		m.Children = []models.Child{}
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	return m, nil
}

// ParseChildren decodes the children field of the membership form. Anything
// that is not a JSON array of objects yields an empty list.
func ParseChildren(raw string) []models.Child {
	raw = strings.TrimSpace(raw)
	children := []models.Child{}
	if raw == "" {
		return children
	}
	if err := json.Unmarshal([]byte(raw), &children); err != nil || children == nil {
		return []models.Child{}
	}
	return children
}

func stampMembership(m models.Membership, now time.Time) models.Membership {
	m.Timestamp = now.Format(time.RFC3339)
	if m.Children == nil {
		m.Children = []models.Child{}
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	return m
}

func summarizeMembership(m models.Membership) string {
	summary := m.Name
	if m.Phone != "" {
		summary += " (" + m.Phone + ")"
	}
	return summary
}
