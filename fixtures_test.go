package docbind_test

import (
	"github.com/cockroachdb/errors"

	"github.com/reoring/docbind"
)

type Color int

const (
	Red Color = iota
	Green
	Blue
)

func (c Color) String() string {
	switch c {
	case Red:
		return "RED"
	case Green:
		return "GREEN"
	case Blue:
		return "BLUE"
	}
	return "Color?"
}

// ColorType only declares RED and GREEN.
var ColorType = docbind.Enum("Color", Red, Green)

type Item struct {
	Name  string
	Count int
	Tags  []string
	Color *Color
	Child *Item
}

func itemType() docbind.Type {
	b := docbind.NewObject[Item]("Item")
	t := b.Type()
	b.Field(
		docbind.Prop("name", docbind.String,
			func(i *Item) string { return i.Name },
			func(i *Item, v string) { i.Name = v }),
		docbind.Prop("count", docbind.Int,
			func(i *Item) int { return i.Count },
			func(i *Item, v int) { i.Count = v }),
		docbind.Prop("tags", docbind.ListOf(docbind.String),
			func(i *Item) []string { return i.Tags },
			func(i *Item, v []string) { i.Tags = v }),
		docbind.Prop("color", ColorType,
			func(i *Item) *Color { return i.Color },
			func(i *Item, v *Color) { i.Color = v }),
		docbind.Prop("child", t,
			func(i *Item) *Item { return i.Child },
			func(i *Item, v *Item) { i.Child = v }),
	)
	return t
}

// upperString is a custom adapter used to observe factory priority.
var upperString = docbind.AdapterOf(
	func(ctx *docbind.WriterContext, v string) error { return ctx.String("<" + v + ">") },
	func(ctx *docbind.ReaderContext) (string, error) { return ctx.StringValue() },
)

func isErr(err, target error) bool { return errors.Is(err, target) }
