package session

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/huynhmanh219/project-course-sub001/core"
)

// Password policy applied locally before a change-password call; the server
// enforces its own policy as well.
var (
	pwdMinLen     = 8
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// validatePassword applies the password policy to pwd:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
func validatePassword(pwd string, usr User) error {
	fieldErr := func(text string) error {
		return core.NewValidationError(
			fmt.Errorf("password policy violation"),
			core.FieldError{Field: "new_password", Error: text},
		)
	}

	var (
		digitCount         int
		hasUpper, hasLower bool
	)

	if len(pwd) < pwdMinLen {
		return fieldErr(pwdMinLenText)
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return fieldErr(pwdNoSpaceText)
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == len(pwd) {
		return fieldErr(pwdNotAllNumText)
	}

	if !(hasUpper && hasLower && digitCount > 0 && specialRegex.MatchString(pwd)) {
		return fieldErr(pwdComplexityText)
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(pwd, usr.Email) >= pwdMaxSim ||
		getRatio(pwd, usr.FirstName) >= pwdMaxSim ||
		getRatio(pwd, usr.LastName) >= pwdMaxSim {
		return fieldErr(pwdAttrSimText)
	}
	return nil
}
