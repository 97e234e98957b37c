package entity

// State состояние конечного автомата движения игрока
type State interface {
	Name() string
	Enter(p *Player)
	Update(p *Player, dt float32) State
	Exit(p *Player)
}

// SetState переключает состояние, вызывая Exit у старого и Enter у нового
func (p *Player) SetState(state State) {
	if p.CurrentState != nil {
		p.CurrentState.Exit(p)
	}

	p.CurrentState = state
	p.StateTime = 0

	if p.CurrentState != nil {
		p.CurrentState.Enter(p)
	}
}

// updateState продвигает автомат на один тик
func (p *Player) updateState(dt float32) {
	if p.CurrentState == nil {
		p.SetState(&IdleState{})
		return
	}

	p.StateTime += dt
	next := p.CurrentState.Update(p, dt)
	if next != p.CurrentState {
		p.SetState(next)
	}
}

// === Конкретные состояния ===

// IdleState игрок стоит на опоре без ввода
type IdleState struct{}

func (s *IdleState) Name() string { return "idle" }

func (s *IdleState) Enter(p *Player) {
	// Горизонтальная скорость не накапливается, гасим остаток
	p.Body.Velocity[0] = 0
	p.Body.Velocity[2] = 0
}

func (s *IdleState) Update(p *Player, dt float32) State {
	if !p.Body.OnGround {
		return &AirborneState{}
	}
	if p.moving {
		return &WalkState{}
	}
	return s
}

func (s *IdleState) Exit(p *Player) {}

// WalkState игрок идёт по опоре
type WalkState struct {
	Distance float32 // пройдено за время в состоянии
}

func (s *WalkState) Name() string { return "walk" }

func (s *WalkState) Enter(p *Player) {
	s.Distance = 0
}

func (s *WalkState) Update(p *Player, dt float32) State {
	if !p.Body.OnGround {
		return &AirborneState{}
	}
	if !p.moving {
		return &IdleState{}
	}
	s.Distance += p.lastStep
	return s
}

func (s *WalkState) Exit(p *Player) {}

// AirborneState игрок в прыжке или падении
type AirborneState struct {
	PeakY float32
}

func (s *AirborneState) Name() string { return "airborne" }

func (s *AirborneState) Enter(p *Player) {
	s.PeakY = p.Body.Position.Y()
}

func (s *AirborneState) Update(p *Player, dt float32) State {
	if y := p.Body.Position.Y(); y > s.PeakY {
		s.PeakY = y
	}
	if !p.Body.OnGround {
		return s
	}
	if p.moving {
		return &WalkState{}
	}
	return &IdleState{}
}

func (s *AirborneState) Exit(p *Player) {
	p.lastFall = s.PeakY - p.Body.Position.Y()
}
