package domain

import (
	"errors"
	"math"
	"time"
)

var ErrInvalidPosition = errors.New("position must be a finite non-negative number")

// Player is either paused (idle) or playing. Position is in seconds.
type Player struct {
	Video     Video     `json:"video"`
	Position  float64   `json:"position"`
	IsPlaying bool      `json:"is_playing"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPlayer(video Video, now time.Time) Player {
	return Player{
		Video:     video,
		Position:  0,
		IsPlaying: false,
		UpdatedAt: now,
	}
}

func validPosition(position float64) bool {
	return position >= 0 && !math.IsInf(position, 0) && !math.IsNaN(position)
}

func (p *Player) setPosition(position *float64) error {
	if position == nil {
		return nil
	}
	if !validPosition(*position) {
		return ErrInvalidPosition
	}

	p.Position = *position
	return nil
}

func (p *Player) Play(position *float64, now time.Time) error {
	if err := p.setPosition(position); err != nil {
		return err
	}

	p.IsPlaying = true
	p.UpdatedAt = now
	return nil
}

func (p *Player) Pause(position *float64, now time.Time) error {
	if err := p.setPosition(position); err != nil {
		return err
	}

	p.IsPlaying = false
	p.UpdatedAt = now
	return nil
}

// Seek moves the play head without touching the play state.
func (p *Player) Seek(position float64, now time.Time) error {
	if err := p.setPosition(&position); err != nil {
		return err
	}

	p.UpdatedAt = now
	return nil
}

// ChangeVideo loads a new video paused at the beginning.
func (p *Player) ChangeVideo(video Video, now time.Time) {
	p.Video = video
	p.Position = 0
	p.IsPlaying = false
	p.UpdatedAt = now
}
