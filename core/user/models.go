package user

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/edufacil/efs/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Student
	RoleStudent = "student:"
)

// StartingCredits is granted to every newly approved account.
const StartingCredits = 3

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	StudentRoles = []string{RoleStudent}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Students: 10 - 1
		RoleStudent: 1,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 3)
	all = append(all, AdminRoles...)
	all = append(all, StudentRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string       `json:"id"`
	SID          string       `json:"sid"` // student ID
	Email        string       `json:"email"`
	Roles        []string     `json:"roles"`
	IsActive     *bool        `json:"is_active"`
	Credits      int          `json:"credits"`
	Phone        string       `json:"phone,omitempty"`
	Major        string       `json:"major,omitempty"`
	YearOfStudy  int          `json:"year_of_study,omitempty"`
	GPA          null.Float64 `json:"gpa,omitempty"`
	DSEScore     string       `json:"dse_score,omitempty"`
	Skills       []string     `json:"skills,omitempty"`
	AboutMe      string       `json:"about_me,omitempty"`
	PhotoKey     string       `json:"photo_key,omitempty"`
	PasswordHash []byte       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at"` // UTC
	LastLogin    time.Time    `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) { u.IsActive = &active }

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

// PendingAccount is a registration awaiting admin review. Approval converts
// it into a User; rejection discards it.
type PendingAccount struct {
	ID           string    `json:"id"`
	SID          string    `json:"sid"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	PhotoKey     string    `json:"photo_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// NewAccount contains information needed to request a new account.
type NewAccount struct {
	SID             string `json:"sid" validate:"required,alphanum"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Photo           string `json:"photo" validate:"required"` // base64 student-card image
	FileName        string `json:"file_name"`
}

func (na *NewAccount) Validate(svc Service) error {
	na.SID = core.CleanString(na.SID, true /* lower */)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.FileName = core.CleanString(na.FileName)
	if na.FileName == "" {
		na.FileName = "student_card.jpg"
	}

	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckUniqueness(na.SID, na.Email)
}

// UpdateProfile defines what information a user may change on their own profile.
type UpdateProfile struct {
	Phone       string   `json:"phone"`
	Major       string   `json:"major"`
	YearOfStudy int      `json:"year_of_study" validate:"omitempty,min=1,max=8"`
	GPA         *float64 `json:"gpa" validate:"omitempty,min=0,max=4.3"`
	DSEScore    string   `json:"dse_score"`
	Skills      []string `json:"skills"`
	AboutMe     string   `json:"about_me"`
}

func (up *UpdateProfile) Validate() error {
	up.Phone = core.CleanString(up.Phone)
	up.Major = core.CleanString(up.Major)
	up.DSEScore = core.CleanString(up.DSEScore)
	return core.Validate.Struct(up)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

// GetFilter selects a single user; exactly one field should be set.
type GetFilter struct {
	ID         string
	SID        string
	Email      string
	SIDOrEmail string
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
