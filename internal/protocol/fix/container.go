package fix

import (
	"fmt"
	"strconv"
	"strings"
)

type fieldKind uint8

const (
	kindScalar fieldKind = iota
	kindGroup
	// kindRepeatErr records decoder ambiguity: the tag appeared more than
	// once at a level where the dictionary knows no repeating group. Any
	// read of such a tag fails with ErrRepeatingTag.
	kindRepeatErr
)

type field struct {
	tag    Tag
	kind   fieldKind
	value  string
	groups []*Container
}

// Container is an insertion-ordered mapping from tag to either a scalar
// value or a repeating-group list. Messages and group instances share this
// shape; a group instance simply has no message type.
type Container struct {
	fields []field
	index  map[Tag]int
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{index: make(map[Tag]int)}
}

// NewGroup builds a group instance from tag/value pairs, preserving map-free
// insertion order of the variadic list: NewGroup(Tag(611), "aaa", Tag(612), "bbb").
func NewGroup(pairs ...any) *Container {
	c := NewContainer()
	for i := 0; i+1 < len(pairs); i += 2 {
		tag, ok := pairs[i].(Tag)
		if !ok {
			if n, isInt := pairs[i].(int); isInt {
				tag = Tag(n)
			} else {
				continue
			}
		}
		_ = c.Set(tag, pairs[i+1])
	}
	return c
}

// formatValue renders a caller-supplied value to its wire string.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Set stores a scalar value for tag. Setting a tag that already exists fails
// with ErrDuplicatedTag; use Replace to overwrite.
func (c *Container) Set(tag Tag, value any) error {
	if tag <= 0 {
		return tagErr(ErrInvalidTag, tag)
	}
	if _, ok := c.index[tag]; ok {
		return tagErr(ErrDuplicatedTag, tag)
	}
	c.append(field{tag: tag, kind: kindScalar, value: formatValue(value)})
	return nil
}

// Replace stores a scalar value for tag, overwriting any existing scalar in
// place (insertion order is kept).
func (c *Container) Replace(tag Tag, value any) {
	if i, ok := c.index[tag]; ok {
		c.fields[i] = field{tag: tag, kind: kindScalar, value: formatValue(value)}
		return
	}
	c.append(field{tag: tag, kind: kindScalar, value: formatValue(value)})
}

// markRepeated flags tag as ambiguously repeated. Overwrites any prior slot.
func (c *Container) markRepeated(tag Tag) {
	if i, ok := c.index[tag]; ok {
		c.fields[i] = field{tag: tag, kind: kindRepeatErr}
		return
	}
	c.append(field{tag: tag, kind: kindRepeatErr})
}

func (c *Container) append(f field) {
	if c.index == nil {
		c.index = make(map[Tag]int)
	}
	c.index[f.tag] = len(c.fields)
	c.fields = append(c.fields, f)
}

// Get returns the scalar value of tag. It fails with ErrTagNotFound when the
// tag is absent and ErrRepeatingTag when the decoder marked it ambiguous.
func (c *Container) Get(tag Tag) (string, error) {
	i, ok := c.index[tag]
	if !ok {
		return "", tagErr(ErrTagNotFound, tag)
	}
	switch c.fields[i].kind {
	case kindRepeatErr:
		return "", tagErr(ErrRepeatingTag, tag)
	case kindGroup:
		return strconv.Itoa(len(c.fields[i].groups)), nil
	default:
		return c.fields[i].value, nil
	}
}

// GetInt returns the tag value parsed as an integer.
func (c *Container) GetInt(tag Tag) (int, error) {
	v, err := c.Get(tag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("tag=%d is not an integer: %w", tag, err)
	}
	return n, nil
}

// GetFloat returns the tag value parsed as a float.
func (c *Container) GetFloat(tag Tag) (float64, error) {
	v, err := c.Get(tag)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("tag=%d is not a number: %w", tag, err)
	}
	return f, nil
}

// Contains reports whether tag is present (scalar, group or error marker).
func (c *Container) Contains(tag Tag) bool {
	_, ok := c.index[tag]
	return ok
}

// Remove deletes tag if present.
func (c *Container) Remove(tag Tag) {
	i, ok := c.index[tag]
	if !ok {
		return
	}
	c.fields = append(c.fields[:i], c.fields[i+1:]...)
	delete(c.index, tag)
	for j := i; j < len(c.fields); j++ {
		c.index[c.fields[j].tag] = j
	}
}

// AddGroup appends (index -1) or inserts a group instance under tag,
// creating the group slot on first use.
func (c *Container) AddGroup(tag Tag, group *Container, index int) error {
	if group == nil {
		return fmt.Errorf("%w: nil group for tag=%d", ErrInvalidTag, tag)
	}
	if i, ok := c.index[tag]; ok {
		if c.fields[i].kind != kindGroup {
			return tagErr(ErrUnmappedGroup, tag)
		}
		c.fields[i].groups = insertGroup(c.fields[i].groups, group, index)
		return nil
	}
	c.append(field{tag: tag, kind: kindGroup, groups: insertGroup(nil, group, index)})
	return nil
}

// SetGroup stores the full group list for tag. Fails with ErrDuplicatedTag
// when the tag already exists.
func (c *Container) SetGroup(tag Tag, groups []*Container) error {
	if _, ok := c.index[tag]; ok {
		return tagErr(ErrDuplicatedTag, tag)
	}
	c.append(field{tag: tag, kind: kindGroup, groups: append([]*Container{}, groups...)})
	return nil
}

func insertGroup(groups []*Container, g *Container, index int) []*Container {
	if index < 0 || index >= len(groups) {
		return append(groups, g)
	}
	groups = append(groups, nil)
	copy(groups[index+1:], groups[index:])
	groups[index] = g
	return groups
}

// GetGroupList returns all group instances stored under tag. Fails with
// ErrTagNotFound when absent and ErrUnmappedGroup when tag holds a scalar.
func (c *Container) GetGroupList(tag Tag) ([]*Container, error) {
	i, ok := c.index[tag]
	if !ok {
		return nil, tagErr(ErrTagNotFound, tag)
	}
	if c.fields[i].kind != kindGroup {
		return nil, tagErr(ErrUnmappedGroup, tag)
	}
	return c.fields[i].groups, nil
}

// GetGroupByIndex returns the i-th group instance under tag.
func (c *Container) GetGroupByIndex(tag Tag, index int) (*Container, error) {
	groups, err := c.GetGroupList(tag)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(groups) {
		return nil, fmt.Errorf("%w: index %d out of range of tag=%d group", ErrTagNotFound, index, tag)
	}
	return groups[index], nil
}

// GetGroupByTag linearly scans the group instances under tag and returns the
// first whose childTag equals value.
func (c *Container) GetGroupByTag(tag, childTag Tag, value string) (*Container, error) {
	groups, err := c.GetGroupList(tag)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if v, err := g.Get(childTag); err == nil && v == value {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: tag=%d child=%d value=%q", ErrTagNotFound, tag, childTag, value)
}

// RemoveGroup removes the index-th group instance under tag, or the whole
// group when index is -1. Missing tags are ignored.
func (c *Container) RemoveGroup(tag Tag, index int) {
	i, ok := c.index[tag]
	if !ok || c.fields[i].kind != kindGroup {
		return
	}
	if index < 0 {
		c.Remove(tag)
		return
	}
	groups := c.fields[i].groups
	if index >= len(groups) {
		return
	}
	c.fields[i].groups = append(groups[:index], groups[index+1:]...)
}

// IsGroup reports whether tag holds a repeating group. The second result is
// false when the tag is absent.
func (c *Container) IsGroup(tag Tag) (isGroup, exists bool) {
	i, ok := c.index[tag]
	if !ok {
		return false, false
	}
	return c.fields[i].kind == kindGroup, true
}

// Tags returns the tags in insertion order.
func (c *Container) Tags() []Tag {
	tags := make([]Tag, len(c.fields))
	for i, f := range c.fields {
		tags[i] = f.tag
	}
	return tags
}

// Len returns the number of slots in the container.
func (c *Container) Len() int {
	return len(c.fields)
}

// String renders the canonical pipe-delimited form used for equality checks
// and logging: "tag=value|...", groups as "tag=N=>[sub1, sub2]", ambiguous
// tags as "tag=#err#".
func (c *Container) String() string {
	var sb strings.Builder
	for i, f := range c.fields {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(f.tag.String())
		sb.WriteByte('=')
		switch f.kind {
		case kindScalar:
			sb.WriteString(f.value)
		case kindRepeatErr:
			sb.WriteString("#err#")
		case kindGroup:
			sb.WriteString(strconv.Itoa(len(f.groups)))
			sb.WriteString("=>[")
			for j, g := range f.groups {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(g.String())
			}
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// Equal reports canonical-form equality: same tags in the same order with
// the same values, groups included.
func (c *Container) Equal(o *Container) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.String() == o.String()
}
