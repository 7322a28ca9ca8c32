package usecasecontract

// IValidator validates user input and configuration.
type IValidator interface {
	ValidateEmail(email string) error
	ValidatePasswordStrength(password string) error
	ValidateStruct(s interface{}) error
}
