package games

import (
	"math"
	"time"

	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/model"
)

const (
	hitPoints           = 20
	precisionClearBonus = 100

	tapFeedback = 600 * time.Millisecond

	zoneMinStart = 0.1
	zoneMaxEnd   = 0.9
)

// PrecisionView is the render state of the sweep bar.
type PrecisionView struct {
	Position     float64
	MovingRight  bool
	ZoneStart    float64
	ZoneWidth    float64
	Hits         int
	RequiredHits int
	Paused       bool
	// LastHit is nil until the first tap, then the result of the latest tap.
	LastHit *bool
	Done    bool
}

// PrecisionSpeed is the marker speed in normalized units per second.
func PrecisionSpeed(level int, d model.Difficulty) float64 {
	return (1.2 + float64(level)*0.1) / d.TimeMultiplier()
}

// ZoneWidth is the normalized width of the target zone.
func ZoneWidth(level int, d model.Difficulty) float64 {
	base := math.Max(0.08, 0.25-float64(level)*0.015)
	switch d {
	case model.Calm:
		return base * 1.5
	case model.Intense:
		return base * 0.7
	default:
		return base
	}
}

// RequiredHits is the number of successful taps that clears the level.
func RequiredHits(level int) int {
	return min(3+level/2, 8)
}

// Precision is the timing game: stop a sweeping marker inside the target zone.
type Precision struct {
	level      int
	difficulty model.Difficulty
	gen        *generator.Generator

	speed        float64
	width        float64
	requiredHits int

	hits      int
	position  float64
	direction float64
	zoneStart float64

	paused      bool
	pendingZone bool
	lastHit     *bool
	done        bool
}

// NewPrecision returns an unstarted Precision game.
func NewPrecision(level int, d model.Difficulty, gen *generator.Generator) *Precision {
	return &Precision{
		level:        level,
		difficulty:   d,
		gen:          gen,
		speed:        PrecisionSpeed(level, d),
		width:        ZoneWidth(level, d),
		requiredHits: RequiredHits(level),
		direction:    1,
	}
}

// Type implements Game.
func (p *Precision) Type() model.GameType { return model.Precision }

// Level implements Game.
func (p *Precision) Level() int { return p.level }

// Difficulty implements Game.
func (p *Precision) Difficulty() model.Difficulty { return p.difficulty }

// Start resets the marker and places the first zone.
func (p *Precision) Start() {
	p.hits = 0
	p.position = 0
	p.direction = 1
	p.paused = false
	p.pendingZone = false
	p.lastHit = nil
	p.done = false
	p.placeZone()
}

func (p *Precision) placeZone() {
	p.zoneStart = p.gen.FloatRange(zoneMinStart, zoneMaxEnd-p.width)
}

// Advance sweeps the marker, reflecting at both ends of the bar.
func (p *Precision) Advance(dt time.Duration) {
	if p.paused || p.done || dt <= 0 {
		return
	}
	p.position, p.direction = sweep(p.position, p.direction, p.speed*dt.Seconds())
}

// sweep moves pos by dist in dir and reflects off 0 and 1 as many times as needed.
func sweep(pos, dir, dist float64) (float64, float64) {
	pos += dir * dist
	for pos < 0 || pos > 1 {
		if pos > 1 {
			pos = 2 - pos
			dir = -1
		} else {
			pos = -pos
			dir = 1
		}
	}
	return pos, dir
}

// InZone reports whether the marker is currently inside the target zone.
func (p *Precision) InZone() bool {
	return p.position >= p.zoneStart && p.position <= p.zoneStart+p.width
}

// Act implements Game.
func (p *Precision) Act(a Action) Verdict {
	if _, ok := a.(Tap); !ok || p.paused || p.done {
		return Verdict{}
	}
	hit := p.InZone()
	p.lastHit = &hit
	p.paused = true
	if !hit {
		return Verdict{Accepted: true, LifeLost: true, Delay: tapFeedback}
	}

	p.hits++
	points := scaled(hitPoints, p.difficulty)
	if p.hits == p.requiredHits {
		p.done = true
		return Verdict{Accepted: true, Points: points + scaled(precisionClearBonus, p.difficulty), Cleared: true}
	}
	p.pendingZone = true
	return Verdict{Accepted: true, Points: points, Delay: tapFeedback}
}

// Settle resumes the sweep, with a new zone after a successful tap.
func (p *Precision) Settle() {
	p.paused = false
	if p.pendingZone {
		p.pendingZone = false
		p.placeZone()
	}
}

// Snapshot implements Game.
func (p *Precision) Snapshot() Snapshot {
	return Snapshot{Game: model.Precision, Precision: &PrecisionView{
		Position:     p.position,
		MovingRight:  p.direction > 0,
		ZoneStart:    p.zoneStart,
		ZoneWidth:    p.width,
		Hits:         p.hits,
		RequiredHits: p.requiredHits,
		Paused:       p.paused,
		LastHit:      p.lastHit,
		Done:         p.done,
	}}
}
