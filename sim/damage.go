package sim

import "math"

// ApplyDamage は d.TargetID のロボットにダメージを与えます。
// 対象が既に HP 0、存在しない、または量が負の場合は何もせず false を返します。HP 0 になればマッチを終了します。
// ServerAuthority では HP を減らさず、フックへの通知とノックバック・点滅だけを行います。
func (m *Match) ApplyDamage(d Damage) bool {
	r := m.Robot(d.TargetID)
	if r == nil || m.phase != Playing {
		return false
	}
	ok := m.applyDamage(r, d)
	m.settleDeaths()
	return ok
}

func (m *Match) applyDamage(r *Robot, d Damage) bool {
	if r.HP <= 0 || !(d.Amount >= 0) {
		return false
	}
	d.TargetID = r.ID

	if m.mode == LocalAuthority {
		r.HP = math.Max(0, r.HP-d.Amount)
	}

	if !r.IsDashing() && d.Amount > 0 && d.KnockbackMult > 0 {
		dirX, dirY := knockbackDirection(d.FromX, d.FromY, r.X, r.Y)
		scale := math.Max(0.1, d.Amount/m.cfg.Charge.MaxDamage)
		r.startKnockback(dirX, dirY, m.cfg.Dash.KnockbackForce*d.KnockbackMult*scale)
	}
	r.Flash.trigger(m.elapsed, &m.cfg.Robot)

	m.logger.Debug("damage applied",
		"playerID", r.ID,
		"amount", d.Amount,
		"cause", d.Cause.String(),
		"hp", r.HP,
	)
	r.hooks.DamageDealt(r, d)

	if m.mode == LocalAuthority && r.HP <= 0 {
		m.deaths = append(m.deaths, r.ID)
	}
	return true
}

// applyZoneDamage は安全地帯の外にいるロボットに1tick分のダメージを与えます。
func (m *Match) applyZoneDamage() {
	perTick := m.cfg.ZoneDamagePerTick()
	for _, r := range m.robots {
		if m.zone.Contains(r.X, r.Y) {
			if !r.InSafeZone {
				m.logger.Debug("robot re-entered safe zone", "playerID", r.ID)
				r.InSafeZone = true
			}
			continue
		}
		if r.InSafeZone {
			m.logger.Debug("robot left safe zone", "playerID", r.ID)
			r.InSafeZone = false
		}
		m.applyDamage(r, Damage{
			Amount: perTick,
			FromX:  r.X,
			FromY:  r.Y,
			Cause:  CauseZone,
		})
	}
}

// settleDeaths はこのフェーズで HP 0 になったロボットからマッチ結果を確定します。
// 同一フェーズで両者が倒れた場合は引き分けです。
func (m *Match) settleDeaths() bool {
	if len(m.deaths) == 0 {
		return false
	}
	dead := [2]bool{}
	for _, id := range m.deaths {
		dead[id-1] = true
	}
	m.deaths = m.deaths[:0]

	switch {
	case dead[0] && dead[1]:
		m.End(Draw())
	case dead[0]:
		m.End(WinnerIs(2))
	default:
		m.End(WinnerIs(1))
	}
	return true
}
