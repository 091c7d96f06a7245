package domain

import "fmt"

type Step int

const (
	StepPhoneEntry Step = iota
	StepOTPVerification
	StepProfileEntry
	StepCompleted
	StepCancelled
)

var stepNames = map[Step]string{
	StepPhoneEntry:      "phone_entry",
	StepOTPVerification: "otp_verification",
	StepProfileEntry:    "profile_entry",
	StepCompleted:       "completed",
	StepCancelled:       "cancelled",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s Step) Terminal() bool {
	return s == StepCompleted || s == StepCancelled
}

// ParseStep maps the wire name back to a Step.
func ParseStep(name string) (Step, error) {
	for step, n := range stepNames {
		if n == name {
			return step, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}
