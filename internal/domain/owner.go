package domain

import "fmt"

// Owner identifies whose cart and payment session a request acts on.
// UserID is 0 for anonymous sessions.
type Owner struct {
	UserID    int64
	SessionID string
}

func (o Owner) IsAnonymous() bool {
	return o.UserID == 0
}

func (o Owner) Key() string {
	if o.IsAnonymous() {
		return fmt.Sprintf("anon:%s", o.SessionID)
	}
	return fmt.Sprintf("user:%d", o.UserID)
}
