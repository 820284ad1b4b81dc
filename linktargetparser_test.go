package wikirace

import "testing"

func TestParseLinkTargetsResolvesAndDropsUnresolvable(t *testing.T) {
	maps := newPageMaps(2)
	maps.add(1, "Alpha")
	maps.add(2, "Beta")

	dump := "CREATE TABLE `linktarget` (`lt_id` bigint, `lt_namespace` int, `lt_title` varbinary(255));\n" +
		"INSERT INTO `linktarget` VALUES (501,0,'Alpha'),(502,1,'Talk:Alpha'),(503,0,'Nonexistent');\n"
	path := writeGzipDump(t, dump)

	targets, err := parseLinkTargets(path, maps)
	if err != nil {
		t.Fatal(err)
	}

	alpha, _ := maps.resolveTitle("Alpha")
	if got, ok := targets[501]; !ok || got != alpha {
		t.Errorf("targets[501] = %d, %v; want %d, true", got, ok, alpha)
	}
	if _, ok := targets[502]; ok {
		t.Error("lt_id 502 names a namespace-1 title and should be dropped")
	}
	if _, ok := targets[503]; ok {
		t.Error("lt_id 503 names an unknown title and should be dropped")
	}
}
