package pgrelay

import "errors"

var (
	ErrNoBindings       = errors.New("pgrelay: no channels bound")
	ErrChannelBound     = errors.New("pgrelay: channel already bound")
	ErrEmptyChannelName = errors.New("pgrelay: empty channel name")
)
