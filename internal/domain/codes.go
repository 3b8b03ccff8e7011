package domain

// RegionCodes maps the numeric administrative-region id (p4a) to its two-letter code.
var RegionCodes = map[int]string{
	0: "PHA", 1: "STC", 2: "JHC", 3: "PLK",
	4: "ULK", 5: "HKK", 6: "JHM", 7: "MSK",
	14: "OLK", 15: "ZLK", 16: "VYS", 17: "PAK",
	18: "LBK", 19: "KVK",
}

// RoadTypes labels the road category (p36).
var RoadTypes = map[int]string{
	0: "dálnice",
	1: "silnice 1. třídy",
	2: "silnice 2. třídy",
	3: "silnice 3. třídy",
	4: "uzel (křižovatka)",
	5: "komunikace sledovaná",
	6: "komunikace místní",
	7: "komunikace účelová (polní/lesní)",
	8: "komunikace účelová (ostatní)",
}

// Animals labels every animal kind (p8a).
var Animals = map[int]string{
	1:  "srna/srnec",
	2:  "jelen/laň",
	3:  "daněk",
	4:  "muflon",
	5:  "zajíc",
	6:  "bažant",
	7:  "divoké prase",
	8:  "liška",
	9:  "sob",
	10: "vlk",
	11: "medvěd",
	12: "jiná zvěř",
	13: "vepř",
	14: "kráva, tele",
	15: "kůň",
	16: "koza",
	17: "ovce",
	18: "pes",
	19: "kočka",
	20: "slepice, kohout",
	21: "kachna, husa",
	22: "jiné zvíře",
}

const otherGame = "jiná zvěř"

// WildAnimalGroups collapses wild animal kinds into the groups used by the pie chart.
var WildAnimalGroups = map[int]string{
	1:  "srnec",
	2:  otherGame,
	3:  otherGame,
	4:  otherGame,
	5:  "zajíc",
	6:  otherGame,
	7:  "divoké prase",
	8:  otherGame,
	9:  otherGame,
	10: otherGame,
	11: otherGame,
	12: otherGame,
}

// Visibility labels the daytime part of the visibility column (p19).
var Visibility = map[int]string{
	1: "ve dne",
	2: "ve dne",
	3: "ve dne",
	4: "v noci",
	5: "v noci",
	6: "v noci",
	7: "v noci",
}

// RoadDirections labels the road layout at the accident spot (p28).
var RoadDirections = map[int]string{
	1: "přímý úsek",
	2: "přímý úsek",
	3: "zatáčka",
	4: "křižovatka",
	5: "křižovatka",
	6: "křižovatka",
	7: "kruhový objezd",
}

// SurfaceStates groups the road surface state (p16) into the categories plotted per region.
var SurfaceStates = map[int]string{
	0: "jiný stav",
	1: "suchý povrch",
	2: "suchý povrch",
	3: "mokrý povrch",
	4: "znečištěný povrch",
	5: "náledí",
	6: "náledí",
	7: "znečištěný povrch",
	8: "souvislý sníh",
	9: "náhlá změna stavu",
}

// Collisions labels the collision kind of moving vehicles (p7).
var Collisions = map[int]string{
	1: "čelní",
	2: "boční",
	3: "z boku",
	4: "zezadu",
}

// Injuries labels the injury severity of a person (p59g).
var Injuries = map[int]string{
	1: "usmrcení",
	2: "těžké zranění",
	3: "lehké zranění",
	4: "bez zranění",
}

// Label returns the label for code in table, or false when the code is unknown.
func Label(table map[int]string, code int) (string, bool) {
	s, ok := table[code]
	return s, ok
}
