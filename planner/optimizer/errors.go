package optimizer

import (
	"github.com/pkg/errors"
)

// ErrInfeasible is the cause of every outcome where the job cannot be planned on the
// given budget and server pool: the pool is smaller than the budget, an allocation
// split cannot honor its floors, a stage would run on zero slots, or a stage fits on
// no server. Check with IsInfeasible.
var ErrInfeasible = errors.New("infeasible")

func IsInfeasible(err error) bool {
	return err != nil && errors.Cause(err) == ErrInfeasible
}

func infeasiblef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInfeasible, format, args...)
}
