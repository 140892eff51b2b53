package users

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	userIDPattern = regexp.MustCompile(`^[\w-]+$`)
	mailPattern   = regexp.MustCompile(`(?i)^[\w.-]+@[\w.-]+$`)
)

type createUserRequest struct {
	ID        string `json:"id" binding:"required,userid"`
	FirstName string `json:"firstName" binding:"required,min=2,max=20"`
	LastName  string `json:"lastName" binding:"required,min=2,max=20"`
	Mail      string `json:"mail" binding:"required,usermail"`
}

type updateUserRequest struct {
	FirstName string `json:"firstName" binding:"required,min=2,max=20"`
	LastName  string `json:"lastName" binding:"required,min=2,max=20"`
	Mail      string `json:"mail" binding:"required,usermail"`
}

func (req createUserRequest) toUser() User {
	return User{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mail:      req.Mail,
	}
}

func (req updateUserRequest) toUpdate() Update {
	return Update{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mail:      req.Mail,
	}
}

// RegisterValidations installs the userid and usermail rules on gin's
// validator engine. Call once before routes are served.
func RegisterValidations() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := engine.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return userIDPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return engine.RegisterValidation("usermail", func(fl validator.FieldLevel) bool {
		return mailPattern.MatchString(fl.Field().String())
	})
}

// IsIDValid reports whether an id satisfies the user id format. The RPC
// surface shares this with the HTTP binding rules.
func IsIDValid(id string) bool {
	return userIDPattern.MatchString(id)
}
