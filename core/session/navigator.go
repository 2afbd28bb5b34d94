package session

import "context"

// Navigator moves the user to the login view after a logout.
type Navigator interface {
	// ToLogin performs the regular navigation.
	ToLogin(ctx context.Context) error
	// HardRedirect is the fallback when ToLogin fails. It cannot fail.
	HardRedirect(ctx context.Context)
}

// NavigatorFuncs adapts plain functions to Navigator. Nil fields are no-ops.
type NavigatorFuncs struct {
	Login    func(ctx context.Context) error
	Redirect func(ctx context.Context)
}

func (n NavigatorFuncs) ToLogin(ctx context.Context) error {
	if n.Login == nil {
		return nil
	}
	return n.Login(ctx)
}

func (n NavigatorFuncs) HardRedirect(ctx context.Context) {
	if n.Redirect != nil {
		n.Redirect(ctx)
	}
}

type nopNavigator struct{}

func (nopNavigator) ToLogin(context.Context) error { return nil }
func (nopNavigator) HardRedirect(context.Context)  {}
