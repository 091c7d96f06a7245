package shell

// Slide is one page of the onboarding carousel.
type Slide struct {
	Title      string
	ButtonText string
}

var Slides = []Slide{
	{Title: "Groceries at Your Doorstep in 10–30 Minutes", ButtonText: "Next"},
	{Title: "Trusted Franchise Stores Near You", ButtonText: "Next"},
	{Title: "Real-Time Tracking & Easy Returns", ButtonText: "Get Started!"},
}

// Onboarding tracks the visible carousel slide.
type Onboarding struct {
	index int
}

func (o *Onboarding) Index() int { return o.index }

func (o *Onboarding) Current() Slide { return Slides[o.index] }

// Next advances one slide. It reports true when called on the last slide,
// which finishes onboarding and leaves the index in place.
func (o *Onboarding) Next() bool {
	if o.index < len(Slides)-1 {
		o.index++
		return false
	}
	return true
}

func (o *Onboarding) Reset() { o.index = 0 }
