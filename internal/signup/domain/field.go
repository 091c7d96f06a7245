package domain

// Field names a form input that can carry a validation message.
type Field string

const (
	FieldPhone     Field = "phone"
	FieldAgreement Field = "agreement"
	FieldOTP       Field = "otp"
	FieldFullName  Field = "fullName"
	FieldEmail     Field = "email"
	FieldGeneral   Field = "general"
)

// User facing validation messages.
const (
	MsgPhoneRequired    = "Phone number is required"
	MsgPhoneInvalid     = "Please enter a valid 10-digit mobile number"
	MsgTermsRequired    = "Please agree to the terms and conditions"
	MsgOTPIncomplete    = "Please enter complete OTP"
	MsgFullNameRequired = "Full name is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgGeneral          = "Something went wrong. Please try again."
)
