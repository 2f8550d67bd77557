/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"crypto/rand"
	"math/big"
)

// Role is the hidden category dealt to each seat. It decides how many of
// the player's sentences must be true.
type Role string

const (
	Brahmin   Role = "Brahmin"
	Kshatriya Role = "Kshatriya"
	Vaishya   Role = "Vaishya"
	Shudra    Role = "Shudra"
)

// Roles lists every role in canonical order.
var Roles = [PlayerCount]Role{Brahmin, Kshatriya, Vaishya, Shudra}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TrueSentences is the number of true statements this role must write.
func (r Role) TrueSentences() int {
	switch r {
	case Brahmin:
		return 3
	case Kshatriya:
		return 2
	case Vaishya:
		return 1
	default:
		return 0
	}
}

// Rule is the writing instruction shown to a player holding this role.
func (r Role) Rule() string {
	switch r {
	case Brahmin:
		return "Write three true sentences about yourself."
	case Kshatriya:
		return "Write one false sentence and two true ones."
	case Vaishya:
		return "Write one true sentence and two false ones."
	case Shudra:
		return "Write three false sentences about yourself."
	}
	return ""
}

// Intn returns a uniformly distributed integer in [0, n).
type Intn func(n int) int

// CryptoIntn draws from crypto/rand without modulo bias.
func CryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

// Deal assigns a uniformly random permutation of the roles to the seats
// using a Fisher-Yates shuffle.
func Deal(intn Intn) map[Slot]Role {
	if intn == nil {
		intn = CryptoIntn
	}

	roles := Roles
	for i := len(roles) - 1; i > 0; i-- {
		j := intn(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}

	assignment := make(map[Slot]Role, PlayerCount)
	for i, slot := range Slots {
		assignment[slot] = roles[i]
	}
	return assignment
}

// IsPermutation reports whether a maps every seat to a distinct role.
func IsPermutation(a map[Slot]Role) bool {
	if len(a) != PlayerCount {
		return false
	}
	seen := make(map[Role]bool, PlayerCount)
	for _, slot := range Slots {
		role, ok := a[slot]
		if !ok || !role.Valid() || seen[role] {
			return false
		}
		seen[role] = true
	}
	return true
}
