/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomExists           = errors.New("room already exists")
	ErrRoomFull             = errors.New("all player slots are taken")
	ErrInvalidTransition    = errors.New("action not allowed in the current phase")
	ErrDuplicateName        = errors.New("name is already taken")
	ErrNameRequired         = errors.New("a name is required to join this room")
	ErrIncompleteSubmission = errors.New("submission is incomplete")
	ErrAlreadyGuessed       = errors.New("guess already submitted this round")
	ErrNotHost              = errors.New("only the host may do that")
	ErrNotPlayer            = errors.New("only seated players may do that")
	ErrVersionConflict      = errors.New("room was modified concurrently")
	ErrStoreIO              = errors.New("room store unavailable")
)
