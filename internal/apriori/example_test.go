package apriori_test

import (
	"context"
	"fmt"

	"github.com/Veraticus/market-basket/internal/apriori"
)

func Example() {
	db, err := apriori.Encode([]apriori.Transaction{
		{ID: "1", Items: []string{"milk", "bread"}},
		{ID: "2", Items: []string{"milk", "bread", "eggs"}},
		{ID: "3", Items: []string{"bread", "eggs"}},
		{ID: "4", Items: []string{"milk", "eggs"}},
	})
	if err != nil {
		panic(err)
	}

	itemsets, err := apriori.Mine(context.Background(), db, 0.5)
	if err != nil {
		panic(err)
	}
	for _, s := range itemsets {
		fmt.Printf("%s %.2f\n", s, s.Support)
	}

	rules, err := apriori.GenerateRules(itemsets, 0.6)
	if err != nil {
		panic(err)
	}
	r := rules[len(rules)-2]
	fmt.Printf("%s support=%.3f confidence=%.3f lift=%.3f\n", r, r.Support, r.Confidence, r.Lift)

	// Output:
	// {bread} 0.75
	// {eggs} 0.75
	// {milk} 0.75
	// {bread, eggs} 0.50
	// {bread, milk} 0.50
	// {eggs, milk} 0.50
	// milk → bread support=0.500 confidence=0.667 lift=0.889
}

func ExampleSupportIndex_Lookup() {
	idx := apriori.NewSupportIndex([]apriori.Itemset{
		{Items: []string{"bread", "milk"}, Support: 0.5},
	})

	support, _ := idx.Lookup([]string{"milk", "bread"})
	fmt.Println(support)

	_, err := idx.Lookup([]string{"eggs"})
	fmt.Println(err)

	// Output:
	// 0.5
	// apriori: itemset support not found: [eggs]
}
