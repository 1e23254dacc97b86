package ir

type (
	// ID addresses an instruction node inside Code.
	ID int

	// Code is an ordered list of instructions.
	// Nodes live in one slice and link to each other by index,
	// so stepping in both directions and unlinking are O(1).
	// Code owns head and tail, removing any node keeps them valid.
	Code struct {
		nodes []node

		head, tail ID
		n          int
	}

	node struct {
		Instr

		prev, next ID
		dead       bool
	}
)

const Nil ID = -1

func NewCode() *Code {
	return &Code{
		head: Nil,
		tail: Nil,
	}
}

func (c *Code) Append(x Instr) ID {
	id := ID(len(c.nodes))

	c.nodes = append(c.nodes, node{
		Instr: x,
		prev:  c.tail,
		next:  Nil,
	})

	if c.tail != Nil {
		c.nodes[c.tail].next = id
	} else {
		c.head = id
	}

	c.tail = id
	c.n++

	return id
}

// Remove unlinks the node. Its ID is never reused.
func (c *Code) Remove(id ID) {
	n := c.node(id)

	if n.prev != Nil {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}

	if n.next != Nil {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}

	n.dead = true
	n.prev, n.next = Nil, Nil
	c.n--
}

func (c *Code) Head() ID { return c.head }
func (c *Code) Tail() ID { return c.tail }

func (c *Code) Next(id ID) ID { return c.node(id).next }
func (c *Code) Prev(id ID) ID { return c.node(id).prev }

// At returns the instruction stored at id.
// Only the Critical mark may be changed through it.
func (c *Code) At(id ID) *Instr { return &c.node(id).Instr }

// Len is the number of linked instructions.
func (c *Code) Len() int { return c.n }

// Instrs returns instructions in program order.
func (c *Code) Instrs() []Instr {
	r := make([]Instr, 0, c.n)

	for id := c.head; id != Nil; id = c.nodes[id].next {
		r = append(r, c.nodes[id].Instr)
	}

	return r
}

func (c *Code) node(id ID) *node {
	if id < 0 || int(id) >= len(c.nodes) || c.nodes[id].dead {
		panic(id)
	}

	return &c.nodes[id]
}
