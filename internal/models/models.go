package models

import (
	"encoding/json"
	"time"
)

type Prayer struct {
	ID   int    `json:"id"`
	TS   int64  `json:"ts"`
	Name string `json:"name"`
	Anon bool   `json:"anon"`
	Text string `json:"text"`
}

type Membership struct {
	ID                  int               `json:"id"`
	Name                string            `json:"name"`
	DOB                 string            `json:"dob"`
	Phone               string            `json:"phone"`
	Email               string            `json:"email"`
	Address             string            `json:"address"`
	Baptized            string            `json:"baptized"`
	PreviousChurch      string            `json:"previous_church"`
	Why                 string            `json:"why"`
	BirthPlace          string            `json:"birth_place"`
	BloodGroup          string            `json:"blood_group"`
	ChristianStatus     string            `json:"christian_status"`
	BaptismPastor       string            `json:"baptism_pastor"`
	BaptismYear         string            `json:"baptism_year"`
	Education           string            `json:"education"`
	OtherQualifications string            `json:"other_qualifications"`
	Occupation          string            `json:"occupation"`
	Aadhar              string            `json:"aadhar"`
	FatherName          string            `json:"father_name"`
	FatherOccupation    string            `json:"father_occupation"`
	MotherName          string            `json:"mother_name"`
	MotherOccupation    string            `json:"mother_occupation"`
	SpouseName          string            `json:"spouse_name"`
	SpouseOccupation    string            `json:"spouse_occupation"`
	Children            []Child           `json:"children"`
	Declaration         string            `json:"declaration"`
	DeclarationDate     string            `json:"declaration_date"`
	DeclarationPlace    string            `json:"declaration_place"`
	Files               map[string]string `json:"files"`
	Timestamp           string            `json:"timestamp"`
}

type Child struct {
	Name    FlexString `json:"name"`
	Phone   FlexString `json:"phone"`
	Age     FlexString `json:"age"`
	EduOcc  FlexString `json:"eduocc"`
	Address FlexString `json:"address"`
}

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

type LoginLogEntry struct {
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	LoginTime       time.Time  `json:"login_time"`
	LogoutTime      *time.Time `json:"logout_time"`
	DurationSeconds *int64     `json:"duration_seconds"`
}

// SessionUser is the identity carried by an authenticated session.
type SessionUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Sub     string `json:"sub,omitempty"`
	Admin   bool   `json:"admin"`
}

func (p Prayer) DocumentID() int { return p.ID }

func (p Prayer) WithID(id int) Prayer {
	p.ID = id
	return p
}

func (m Membership) DocumentID() int { return m.ID }

func (m Membership) WithID(id int) Membership {
	m.ID = id
	return m
}
