package pathquery_test

import (
	"fmt"

	"github.com/matzehuels/topoviz/pkg/pathquery"
)

func ExampleDecodeResult() {
	res, _ := pathquery.DecodeResult([]byte(`{
		"found": true,
		"path": [{"vertex": "r1"}, {"vertex": {"_id": "r2"}, "edge": {"_id": "r1-r2", "load": 55}}],
		"srv6_data": {"srv6_sid_list": ["fc00:0:1::", "fc00:0:2::"], "srv6_usid": "fc00:0:1:2::"}
	}`))
	fmt.Println(res.Vertices(), res.HopCount, res.SRv6.USID, res.Load.Highest)
	// Output:
	// [r1 r2] 1 fc00:0:1:2:: 55
}

func ExamplePairs() {
	for _, p := range pathquery.Pairs([]string{"w1", "w2", "w3"}) {
		fmt.Println(p.Source, "->", p.Destination)
	}
	// Output:
	// w1 -> w2
	// w1 -> w3
	// w2 -> w3
}
