package order

import "strconv"

// Customer identifies the buyer and carries the loyalty balance used by
// fidelity-gated promotions.
type Customer struct {
	Name     string
	Fidelity int
}

// Validate rejects a negative fidelity balance.
func (c Customer) Validate() error {
	if c.Fidelity < 0 {
		return &InvalidInputError{
			Field:  "fidelity",
			Value:  strconv.Itoa(c.Fidelity),
			Reason: "must not be negative for customer " + c.Name,
		}
	}
	return nil
}
