package sim

// Contact は衝突による1件のヒットです。正面衝突では両方向の2件になります。
type Contact struct {
	AttackerID int
	DefenderID int
	Damage     float64
	HeadOn     bool
}

// Overlapping は2体の中心距離が半径の和より小さいかを返します。
func Overlapping(a, b *Robot) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	rr := a.Radius + b.Radius
	return dx*dx+dy*dy < rr*rr
}

// ResolveCollisions は重なっている2体の衝突を解決します。
// 片方だけがダッシュ中なら攻撃側のダメージを防御側へ与えて攻撃側のダッシュを終了し、
// 両方がダッシュ中なら互いのダメージを同時に与えて両方のダッシュを終了します。
// どちらもダッシュしていなければ何も起きません。何度呼んでも重なりが解消されれば以降は何もしません。
func (m *Match) ResolveCollisions() []Contact {
	if m.phase != Playing {
		return nil
	}
	a, b := m.robots[0], m.robots[1]
	if !Overlapping(a, b) {
		return nil
	}

	var contacts []Contact
	switch {
	case a.IsDashing() && !b.IsDashing():
		contacts = append(contacts, m.hit(a, b))
		a.EndDash(m.elapsed)
	case b.IsDashing() && !a.IsDashing():
		contacts = append(contacts, m.hit(b, a))
		b.EndDash(m.elapsed)
	case a.IsDashing() && b.IsDashing():
		// 位置とダメージは適用前に確定させる
		ca := Contact{AttackerID: a.ID, DefenderID: b.ID, Damage: a.DashDamage, HeadOn: true}
		cb := Contact{AttackerID: b.ID, DefenderID: a.ID, Damage: b.DashDamage, HeadOn: true}
		ax, ay, bx, by := a.X, a.Y, b.X, b.Y
		m.applyDamage(a, Damage{Amount: cb.Damage, FromX: bx, FromY: by, KnockbackMult: 1, Cause: CauseCollision})
		m.applyDamage(b, Damage{Amount: ca.Damage, FromX: ax, FromY: ay, KnockbackMult: 1, Cause: CauseCollision})
		a.EndDash(m.elapsed)
		b.EndDash(m.elapsed)
		m.logger.Debug("head-on collision", "damage1", cb.Damage, "damage2", ca.Damage)
		contacts = append(contacts, ca, cb)
	default:
		return nil
	}

	m.settleDeaths()
	return contacts
}

func (m *Match) hit(attacker, defender *Robot) Contact {
	c := Contact{
		AttackerID: attacker.ID,
		DefenderID: defender.ID,
		Damage:     attacker.DashDamage,
	}
	m.logger.Debug("dash hit", "attacker", attacker.ID, "defender", defender.ID, "damage", c.Damage)
	m.applyDamage(defender, Damage{
		Amount:        c.Damage,
		FromX:         attacker.X,
		FromY:         attacker.Y,
		KnockbackMult: 1,
		Cause:         CauseCollision,
	})
	return c
}
