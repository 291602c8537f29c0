package ordergate

import "time"

// Builders provide a fluent API for assembling document snapshots, mostly
// used by the surrounding application and tests.

// UserBuilder builds a User document.
type UserBuilder struct {
	u *User
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{u: &User{CreatedAt: time.Now(), UpdatedAt: time.Now()}}
}

func (b *UserBuilder) UID(uid string) *UserBuilder     { b.u.UID = uid; return b }
func (b *UserBuilder) Email(email string) *UserBuilder { b.u.Email = email; return b }
func (b *UserBuilder) DisplayName(name string) *UserBuilder {
	b.u.DisplayName = &name
	return b
}
func (b *UserBuilder) Manager(m bool) *UserBuilder { b.u.IsManager = m; return b }
func (b *UserBuilder) Active(a bool) *UserBuilder  { b.u.IsActive = &a; return b }
func (b *UserBuilder) CreatedAt(t time.Time) *UserBuilder {
	b.u.CreatedAt = t
	return b
}
func (b *UserBuilder) Build() *User { return b.u }

// ForActor stamps the identity fields a valid self-create needs.
func (b *UserBuilder) ForActor(actor *ActorContext) *UserBuilder {
	b.u.UID = actor.UID
	b.u.Email = actor.Email
	return b
}

// OrderBuilder builds an Order document.
type OrderBuilder struct {
	o *Order
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{o: &Order{Status: StatusFactoryOrder, CreatedAt: time.Now(), UpdatedAt: time.Now()}}
}

func (b *OrderBuilder) ID(id string) *OrderBuilder { b.o.ID = id; return b }
func (b *OrderBuilder) Owner(uid, email string) *OrderBuilder {
	b.o.CreatedByUID = uid
	b.o.CreatedByEmail = email
	return b
}

// ForActor stamps the ownership triple a valid create needs.
func (b *OrderBuilder) ForActor(actor *ActorContext) *OrderBuilder {
	b.o.CreatedByUID = actor.UID
	b.o.CreatedByEmail = actor.Email
	return b
}
func (b *OrderBuilder) CreatedAt(t time.Time) *OrderBuilder { b.o.CreatedAt = t; return b }
func (b *OrderBuilder) Status(s Status) *OrderBuilder       { b.o.Status = s; return b }
func (b *OrderBuilder) Customer(c string) *OrderBuilder     { b.o.Customer = c; return b }
func (b *OrderBuilder) Salesperson(s string) *OrderBuilder  { b.o.Salesperson = s; return b }
func (b *OrderBuilder) Model(m string) *OrderBuilder        { b.o.Model = m; return b }
func (b *OrderBuilder) Colors(ext, int_ string) *OrderBuilder {
	b.o.ExteriorColor = ext
	b.o.InteriorColor = int_
	return b
}
func (b *OrderBuilder) Price(p float64) *OrderBuilder { b.o.Price = p; return b }
func (b *OrderBuilder) Notes(n string) *OrderBuilder  { b.o.Notes = n; return b }
func (b *OrderBuilder) Build() *Order                 { return b.o }

// NoteBuilder builds an OrderNote document.
type NoteBuilder struct {
	n *OrderNote
}

func NewNoteBuilder() *NoteBuilder {
	return &NoteBuilder{n: &OrderNote{CreatedAt: time.Now(), CreatedByRole: NoteRoleManager}}
}

func (b *NoteBuilder) ID(id string) *NoteBuilder { b.n.ID = id; return b }
func (b *NoteBuilder) Order(orderID, ownerUID string) *NoteBuilder {
	b.n.OrderID = orderID
	b.n.OrderOwnerUID = ownerUID
	return b
}
func (b *NoteBuilder) Text(t string) *NoteBuilder { b.n.Text = t; return b }
func (b *NoteBuilder) Author(actor *ActorContext, name string, role NoteRole) *NoteBuilder {
	b.n.CreatedByUID = actor.UID
	b.n.CreatedByEmail = actor.Email
	b.n.CreatedByName = name
	b.n.CreatedByRole = role
	return b
}
func (b *NoteBuilder) CreatedAt(t time.Time) *NoteBuilder { b.n.CreatedAt = t; return b }
func (b *NoteBuilder) Build() *OrderNote                  { return b.n }
