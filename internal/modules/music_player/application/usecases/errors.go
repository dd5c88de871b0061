package usecases

import "errors"

// User-facing errors. Their text is shown verbatim in ephemeral replies.

// Voice guard, checked in this order.
var (
	ErrUserNotInVoice = errors.New("you must be in a voice channel")
	ErrNotConnected   = errors.New("I'm not connected to a voice channel")
	ErrNotSameChannel = errors.New("you must be in the same voice channel as me")
)

// Playback and queue.
var (
	ErrNotPlaying        = errors.New("nothing is currently playing")
	ErrNotPaused         = errors.New("playback is not paused")
	ErrQueueEmpty        = errors.New("the queue is empty")
	ErrInvalidPosition   = errors.New("invalid queue position")
	ErrAlreadyAtPosition = errors.New("the track is already at that position")
	ErrInvalidVolume     = errors.New("volume must be between 0 and 100")
	ErrInvalidLoopMode   = errors.New("loop mode must be none, track or queue")
)

// Track loading.
var (
	ErrNoResults  = errors.New("no results found")
	ErrLoadFailed = errors.New("failed to load track")
)

// Filters.
var (
	ErrUnknownFilter       = errors.New("unknown filter")
	ErrFilterAlreadyActive = errors.New("that filter is already active")
	ErrNoFilterActive      = errors.New("no filter is active")
)

// Autoplay.
var (
	ErrNoAutoplayReference  = errors.New("autoplay has no previous track to go on")
	ErrNoAutoplayCandidates = errors.New("autoplay found no new related tracks")
)
