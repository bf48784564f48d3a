package forms

import (
	"strconv"
	"strings"

	"edusahasra/internal/domain/school"
)

// Form structs for each wizard step. Validation tags drive the per-step
// checks; the review steps re-run all of them.

type schoolIdentityForm struct {
	SchoolName string `json:"schoolName" validate:"notblank,min=3,max=150"`
	RegNumber  string `json:"regNumber" validate:"notblank,max=50"`
	SchoolType string `json:"schoolType" validate:"required,oneof=national provincial private"`
}

type schoolLocationForm struct {
	District   string `json:"district" validate:"required"`
	City       string `json:"city" validate:"notblank,max=100"`
	Address    string `json:"address" validate:"notblank,max=300"`
	PostalCode string `json:"postalCode" validate:"omitempty,numeric,len=5"`
}

type schoolContactForm struct {
	PrincipalName   string `json:"principalName" validate:"notblank,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,srphone"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type contactMessageForm struct {
	Name    string `json:"name" validate:"notblank,max=150"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

// CheckContactMessage validates the public contact form.
func CheckContactMessage(name, email, message string) Errors {
	return Check(contactMessageForm{Name: name, Email: email, Message: message})
}

type donorLoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CheckLogin validates any role's login form before it reaches the backend.
func CheckLogin(email, password string) Errors {
	return Check(donorLoginForm{Email: email, Password: password})
}

type donorRegisterForm struct {
	FullName        string `json:"fullName" validate:"notblank,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,srphone"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// CheckDonorRegistration validates the single-page donor signup form.
func CheckDonorRegistration(fields map[string]string) Errors {
	return Check(donorRegisterForm{
		FullName:        fields["fullName"],
		Email:           fields["email"],
		Phone:           fields["phone"],
		Password:        fields["password"],
		ConfirmPassword: fields["confirmPassword"],
	})
}

// SchoolRegistration builds the five-step school signup wizard. The
// documents step reads documentCount, which the handler sets from the
// staged-file store before validation.
func SchoolRegistration() *Wizard {
	return &Wizard{
		Kind: "school_register",
		Steps: []Step{
			{
				Name:   "identity",
				Title:  "School Identity",
				Fields: []string{"schoolName", "regNumber", "schoolType"},
				Check: func(f map[string]string) Errors {
					return Check(schoolIdentityForm{
						SchoolName: f["schoolName"],
						RegNumber:  f["regNumber"],
						SchoolType: f["schoolType"],
					})
				},
			},
			{
				Name:   "location",
				Title:  "Location",
				Fields: []string{"district", "city", "address", "postalCode"},
				Check: func(f map[string]string) Errors {
					errs := Check(schoolLocationForm{
						District:   f["district"],
						City:       f["city"],
						Address:    f["address"],
						PostalCode: f["postalCode"],
					})
					if f["district"] != "" && !school.IsValidDistrict(f["district"]) {
						if errs == nil {
							errs = Errors{}
						}
						errs["district"] = "district must be a Sri Lankan district"
					}
					return errs
				},
			},
			{
				Name:   "contact",
				Title:  "Contact & Credentials",
				Fields: []string{"principalName", "email", "phone", "password", "confirmPassword"},
				Check: func(f map[string]string) Errors {
					return Check(schoolContactForm{
						PrincipalName:   f["principalName"],
						Email:           f["email"],
						Phone:           f["phone"],
						Password:        f["password"],
						ConfirmPassword: f["confirmPassword"],
					})
				},
			},
			{
				Name:   "documents",
				Title:  "Verification Documents",
				Fields: []string{"documentCount"},
				Check: func(f map[string]string) Errors {
					n, _ := strconv.Atoi(f["documentCount"])
					if n < 1 {
						return Errors{"documents": "at least one verification document is required"}
					}
					return nil
				},
			},
			{
				Name:  "review",
				Title: "Review & Submit",
			},
		},
	}
}

// QuantityPrefix marks draft fields holding per-category item quantities
// in the donation request wizard.
const QuantityPrefix = "qty_"

// RequestQuantities extracts the positive per-category quantities from a
// draft field map.
func RequestQuantities(fields map[string]string) map[string]int {
	out := make(map[string]int)
	for k, v := range fields {
		if !strings.HasPrefix(k, QuantityPrefix) {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			continue
		}
		out[strings.TrimPrefix(k, QuantityPrefix)] = n
	}
	return out
}

// DonationRequest builds the three-step needs-request wizard for schools.
func DonationRequest() *Wizard {
	return &Wizard{
		Kind: "donation_request",
		Steps: []Step{
			{
				Name:   "items",
				Title:  "Needed Items",
				Prefix: QuantityPrefix,
				Check: func(f map[string]string) Errors {
					if len(RequestQuantities(f)) == 0 {
						return Errors{"items": "select at least one item with a quantity"}
					}
					return nil
				},
			},
			{
				Name:   "details",
				Title:  "Details",
				Fields: []string{"notes"},
				Check: func(f map[string]string) Errors {
					if len(f["notes"]) > 2000 {
						return Errors{"notes": "notes must be at most 2000 characters"}
					}
					return nil
				},
			},
			{
				Name:  "review",
				Title: "Review & Submit",
			},
		},
	}
}
