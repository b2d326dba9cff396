package httpapi

import (
	"net/url"
	"strings"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/services"
)

// membershipFromForm maps the public membership form onto a Membership.
func membershipFromForm(form url.Values) models.Membership {
	field := func(key string) string {
		return strings.TrimSpace(form.Get(key))
	}
	return models.Membership{
		Name:                field("memberName"),
		DOB:                 field("memberDob"),
		Phone:               field("memberPhone"),
		Email:               field("memberEmail"),
		Address:             field("memberAddress"),
		Baptized:            field("memberBaptized"),
		PreviousChurch:      field("memberPrevChurch"),
		Why:                 field("memberWhy"),
		BirthPlace:          field("memberBirthPlace"),
		BloodGroup:          field("memberBloodGroup"),
		ChristianStatus:     field("memberChristianStatus"),
		BaptismPastor:       field("memberBaptismPastor"),
		BaptismYear:         field("memberBaptismYear"),
		Education:           field("memberEducation"),
		OtherQualifications: field("memberOtherQualifications"),
		Occupation:          field("memberOccupation"),
		Aadhar:              field("memberAadhar"),
		FatherName:          field("memberFatherName"),
		FatherOccupation:    field("memberFatherOcc"),
		MotherName:          field("memberMotherName"),
		MotherOccupation:    field("memberMotherOcc"),
		SpouseName:          field("memberSpouseName"),
		SpouseOccupation:    field("memberSpouseOcc"),
		Children:            services.ParseChildren(form.Get("children")),
		Declaration:         field("memberDeclaration"),
		DeclarationDate:     field("memberDeclarationDate"),
		DeclarationPlace:    field("memberDeclarationPlace"),
		Files:               map[string]string{},
	}
}
