package domain

import "strings"

// A store that sells and delivers orders.
// Only the fields the freight engine needs are modelled here.
type Store struct {
	ID      string
	Name    string
	Address string
}

func (s *Store) HasAddress() bool {
	return s != nil && strings.TrimSpace(s.Address) != ""
}
