/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "strings"

// Alphabet excludes characters that are easy to misread: 0, O, 1, I, L.
const idAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const idLength = 6

// NewRoomID draws a short room code from crypto/rand.
func NewRoomID() (string, error) {
	var b strings.Builder
	b.Grow(idLength)
	for range idLength {
		b.WriteByte(idAlphabet[CryptoIntn(len(idAlphabet))])
	}
	return b.String(), nil
}

// NormalizeRoomID upper-cases and trims a room code typed by a person.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
