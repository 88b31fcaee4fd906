package importer

import "github.com/bunca/bakery-service/internal/types"

// Sheet layouts shared by the classifier and importer tests.

func rohwarenGrid() types.Grid {
	return types.Grid{
		{"Rohwarenliste Filialbäckerei", "", "", "", ""},
		{"Code", "Bezeichnung", "Einheit", "Grundeinheit", "Preis"},
		{"MEHL550", "Weizenmehl Type 550", "kg", "g", "0,89"},
		{"BUTTER", "Süßrahmbutter", "kg", "g", "6,20"},
		{"HEFE", "Frischhefe", "Würfel", "g", "0,15"},
	}
}

func artikelGrid() types.Grid {
	return types.Grid{
		{"Artikelcode", "Artikel", "Kategorie", "Ausbeute"},
		{"BRZ", "Brezel", "Laugengebäck", "40"},
		{"SEM", "Kaisersemmel", "Brötchen", "60"},
	}
}

func rezepteGrid() types.Grid {
	return types.Grid{
		{"Artikel", "Rohware", "Menge", "Einheit"},
		{"BRZ", "MEHL550", "1000", "g"},
		{"BRZ", "BUTTER", "50", "g"},
		{"BRZ", "MEHL550", "1000", "g"},
		{"", "", "", ""},
		{"BRZ", "SALZ", "", "g"},
		{"BRZ", "SALZ", "", "g"},
	}
}

func produktionGrid() types.Grid {
	return types.Grid{
		{"Datum", "Artikel", "Gesamtmenge"},
		{"2024-03-01", "BRZ", "400"},
		{"2024-03-01", "SEM", "600"},
	}
}

// headers run down the first column
func lieferungenGrid() types.Grid {
	return types.Grid{
		{"Datum", "2024-03-01", "2024-03-01"},
		{"Filiale", "F01", "F02"},
		{"Artikel", "BRZ", "SEM"},
		{"Stück", "120", "80"},
	}
}

// a products table stacked above a two-column allocations table
func stackedGrid() types.Grid {
	return types.Grid{
		{"Code", "Bezeichnung", "Einheit", "Preis"},
		{"MEHL550", "Weizenmehl", "kg", "0,89"},
		{"BUTTER", "Butter", "kg", "6,20"},
		{},
		{"Datum", "Filiale"},
		{"2024-03-01", "F01"},
		{"2024-03-02", "F02"},
	}
}

func notizenGrid() types.Grid {
	return types.Grid{
		{"Hallo", "Welt"},
		{"bitte", "bis Freitag bestellen"},
	}
}
