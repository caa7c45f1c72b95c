package deck

import "woodland/internal/game"

const (
	fox    = game.Fox
	rabbit = game.Rabbit
	mouse  = game.Mouse
	bird   = game.Bird
)

func ambush(s game.Suit) game.Card {
	return game.Card{Name: "Ambush", Type: game.CardAmbush, Suit: s, Effect: "Deal 2 extra hits in battle"}
}

func item(name string, s game.Suit, tag string) game.Card {
	return game.Card{Name: name, Type: game.CardItem, Suit: s, CraftCost: []game.Suit{s}, Item: tag}
}

func effect(name string, s game.Suit, text string, cost ...game.Suit) game.Card {
	return game.Card{Name: name, Type: game.CardItem, Suit: s, CraftCost: cost, Effect: text}
}

// catalog is the fixed 54-card deck definition.
var catalog = []game.Card{
	ambush(fox), ambush(fox),
	ambush(rabbit), ambush(rabbit),
	ambush(mouse), ambush(mouse),
	ambush(bird), ambush(bird),

	{Name: "Fox Dominance", Type: game.CardDominance, Suit: fox, Effect: "Win by ruling 3 fox clearings"},
	{Name: "Rabbit Dominance", Type: game.CardDominance, Suit: rabbit, Effect: "Win by ruling 3 rabbit clearings"},
	{Name: "Mouse Dominance", Type: game.CardDominance, Suit: mouse, Effect: "Win by ruling 3 mouse clearings"},
	{Name: "Bird Dominance", Type: game.CardDominance, Suit: bird, Effect: "Win by ruling 2 opposite corners"},

	item("Sword", fox, "sword"), item("Sword", fox, "sword"),
	item("Crossbow", fox, "crossbow"),
	item("Hammer", rabbit, "hammer"),
	item("Boot", rabbit, "boot"), item("Boot", rabbit, "boot"),
	item("Torch", mouse, "torch"), item("Torch", mouse, "torch"),
	item("Coins", mouse, "coins"), item("Coins", mouse, "coins"),
	item("Bag", mouse, "bag"), item("Bag", mouse, "bag"),
	item("Tea", mouse, "tea"), item("Tea", mouse, "tea"),

	{Name: "Favor of the Foxes", Type: game.CardFavor, Suit: fox, CraftCost: []game.Suit{fox, fox, fox}, Effect: "Remove all enemy pieces in fox clearings"},
	{Name: "Favor of the Rabbits", Type: game.CardFavor, Suit: rabbit, CraftCost: []game.Suit{rabbit, rabbit, rabbit}, Effect: "Remove all enemy pieces in rabbit clearings"},
	{Name: "Favor of the Mice", Type: game.CardFavor, Suit: mouse, CraftCost: []game.Suit{mouse, mouse, mouse}, Effect: "Remove all enemy pieces in mouse clearings"},

	{Name: "Woodland Runners", Type: game.CardItem, Suit: rabbit, CraftCost: []game.Suit{rabbit}, Item: "boot", Effect: "Move through two extra clearings"},
	effect("Arms Trader", fox, "Gain 2 VP per sword you craft", fox, fox),
	effect("Sappers", mouse, "In battle as defender, deal extra hit", mouse),
	effect("Brutality", fox, "Score VP for each enemy warrior removed", fox, fox),
	effect("Tax Collector", rabbit, "Once per turn, take a card from an opponent", rabbit, rabbit, rabbit),
	effect("Scout", mouse, "Look at an opponent's hand", mouse),
	effect("Armorers", fox, "Ignore first hit in battle", fox),
	effect("Better Burrow Bank", rabbit, "Draw a card at start of turn", rabbit, rabbit),
	effect("Cobbler", rabbit, "Take extra move action", rabbit),
	effect("Command Warren", rabbit, "Initiate battle in clearing you rule", rabbit, rabbit),
	effect("Codebreakers", mouse, "Look at Decree before adding cards", mouse),
	effect("Bake Sale", rabbit, "Discard hand, draw equal cards", rabbit),
	effect("Stand and Deliver", mouse, "Steal from supply pile", mouse, mouse, mouse),

	effect("Forest Path", fox, "Draw 1 card", fox),
	effect("Forest Path", rabbit, "Draw 1 card", rabbit),
	effect("Forest Path", mouse, "Draw 1 card", mouse),
	effect("Forest Path", bird, "Draw 1 card", bird),
	effect("Birdsong", bird, "Gain 1 VP", bird),
	effect("Birdsong", bird, "Gain 1 VP", bird),
	effect("Travel Permit", bird, "Move ignoring rule", bird, bird),
	effect("Royal Claim", bird, "Score 1 VP per clearing you rule", bird, bird, bird, bird),

	effect("Hidden Path", fox, "Draw 1 card", fox),
	effect("Hidden Path", rabbit, "Draw 1 card", rabbit),
	effect("Hidden Path", mouse, "Draw 1 card", mouse),
	effect("Hidden Path", bird, "Draw 1 card", bird),
}
