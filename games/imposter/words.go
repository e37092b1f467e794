/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

// FallbackTopic is used when a topic cannot produce a usable pair.
const FallbackTopic = "Random words"

var defaultPair = Pair{Main: "Cloud", Sus: "Fog"}

// BuiltinPacks returns the topics every word bank starts with.
func BuiltinPacks() []Pack {
	return []Pack{
		{Name: "Movies", Pairs: []Pair{
			{"Superhero", "Villain"}, {"Comedy", "Tragedy"}, {"Action", "Drama"},
			{"Sci-Fi", "Fantasy"}, {"Horror", "Thriller"}, {"Musical", "Concert"},
			{"Documentary", "Biography"}, {"Animation", "Cartoon"}, {"Western", "Cowboy"},
			{"Romance", "Love Story"},
		}},
		{Name: "Food", Pairs: []Pair{
			{"Pizza", "Calzone"}, {"Burger", "Sandwich"}, {"Pasta", "Noodles"},
			{"Sushi", "Sashimi"}, {"Taco", "Burrito"}, {"Curry", "Stew"},
			{"Soup", "Broth"}, {"Salad", "Greens"}, {"Cake", "Muffin"},
			{"Ice Cream", "Gelato"},
		}},
		{Name: "Cities", Pairs: []Pair{
			{"Paris", "Rome"}, {"London", "Dublin"}, {"New York", "Chicago"},
			{"Tokyo", "Kyoto"}, {"Sydney", "Melbourne"}, {"Cairo", "Luxor"},
			{"Rio", "Sao Paulo"}, {"Berlin", "Munich"}, {"Dubai", "Abu Dhabi"},
			{"Amsterdam", "Brussels"},
		}},
		{Name: FallbackTopic, Pairs: []Pair{
			{"Chair", "Stool"}, {"Cloud", "Fog"}, {"Ocean", "Lake"},
			{"Book", "Magazine"}, {"Tree", "Bush"}, {"Mountain", "Hill"},
			{"River", "Stream"}, {"Flower", "Plant"}, {"Window", "Door"},
			{"Key", "Lock"},
		}},
		{Name: "Sports", Pairs: []Pair{
			{"Football", "Rugby"}, {"Basketball", "Volleyball"}, {"Tennis", "Badminton"},
			{"Swimming", "Diving"}, {"Cycling", "Running"}, {"Baseball", "Softball"},
			{"Golf", "Putt"}, {"Boxing", "Wrestling"}, {"Skiing", "Snowboarding"},
			{"Hockey", "Lacrosse"},
		}},
		{Name: "Games", Pairs: []Pair{
			{"Chess", "Checkers"}, {"Monopoly", "Risk"}, {"Poker", "Blackjack"},
			{"Scrabble", "Boggle"}, {"Jenga", "Blocks"}, {"Dominoes", "Tiles"},
			{"Charades", "Pictionary"}, {"Bingo", "Lotto"}, {"Sudoku", "Crossword"},
			{"Tic-Tac-Toe", "Connect Four"},
		}},
		{Name: "Slang", Pairs: []Pair{
			{"Lit", "Fire"}, {"Cap", "Lie"}, {"Bet", "Okay"}, {"Drip", "Style"},
			{"Ghosting", "Ignoring"}, {"Slay", "Win"}, {"Simp", "Fan"},
			{"Vibe", "Mood"}, {"No Cap", "Seriously"}, {"Bussin'", "Delicious"},
		}},
		{Name: "Animals", Words: []string{
			"Lion", "Tiger", "Elephant", "Giraffe", "Zebra", "Kangaroo", "Panda",
			"Dolphin", "Whale", "Shark", "Penguin", "Owl", "Eagle", "Wolf", "Bear",
			"Fox", "Rabbit", "Squirrel", "Hedgehog", "Koala", "Chimpanzee", "Gorilla",
			"Crocodile", "Snake", "Spider", "Butterfly", "Bee", "Ant", "Fish", "Octopus",
		}},
	}
}
