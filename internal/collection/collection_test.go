package collection

import (
	"reflect"
	"testing"

	"github.com/hongminglow/wayfarer/internal/models"
)

func TestMergeReactionCounts(t *testing.T) {
	posts := []models.Post{
		{ID: 4, Title: "Bus strike", LikesCount: 9, DislikesCount: 1},
		{ID: 5, Title: "Cheap noodles", LikesCount: 3, CommentsCount: 2},
		{ID: 6, Title: "Lost wallet", LikesCount: 0},
	}
	before := append([]models.Post(nil), posts...)
	reply := models.ReactionCounts{LikesCount: 4, DislikesCount: 0}

	got, found := Merge(posts, 5, func(p *models.Post) {
		p.LikesCount = reply.LikesCount
		p.DislikesCount = reply.DislikesCount
	})
	if !found {
		t.Fatal("post 5 not found")
	}

	want := append([]models.Post(nil), before...)
	want[1].LikesCount = 4
	want[1].DislikesCount = 0
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(posts, before) {
		t.Fatal("Merge modified its input")
	}
}

func TestMergeMissingID(t *testing.T) {
	posts := []models.Post{{ID: 1}}
	got, found := Merge(posts, 99, func(p *models.Post) { p.Title = "x" })
	if found || !reflect.DeepEqual(got, posts) {
		t.Fatalf("Merge on missing id = %+v, %v", got, found)
	}
}

func TestUpsertRemovePrepend(t *testing.T) {
	services := []models.Service{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

	services = Upsert(services, models.Service{ID: 2, Name: "B2"})
	services = Upsert(services, models.Service{ID: 3, Name: "C"})
	if names := serviceNames(services); !reflect.DeepEqual(names, []string{"A", "B2", "C"}) {
		t.Fatalf("after Upsert: %v", names)
	}

	services = Remove(services, 1)
	if names := serviceNames(services); !reflect.DeepEqual(names, []string{"B2", "C"}) {
		t.Fatalf("after Remove: %v", names)
	}

	services = Prepend(services, models.Service{ID: 3, Name: "C2"})
	if names := serviceNames(services); !reflect.DeepEqual(names, []string{"C2", "B2"}) {
		t.Fatalf("after Prepend: %v", names)
	}

	if _, ok := Find(services, 2); !ok {
		t.Fatal("Find(2) missing")
	}
	if keys := Keys(services); !keys[2] || !keys[3] || keys[1] {
		t.Fatalf("Keys = %v", keys)
	}
}

func serviceNames(services []models.Service) []string {
	var out []string
	for _, s := range services {
		out = append(out, s.Name)
	}
	return out
}

func placeFields(p models.Place) []string {
	return []string{p.Name, p.AreaName, p.Category}
}

func TestFilterCaseInsensitive(t *testing.T) {
	places := []models.Place{
		{ID: 1, Name: "Night Market", AreaName: "Old Town", Category: "FOOD"},
		{ID: 2, Name: "River Walk", AreaName: "Riverside", Category: "PARK"},
		{ID: 3, Name: "Temple", AreaName: "old town", Category: "CULTURE"},
	}

	got := Filter(places, "OLD town", placeFields)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("Filter = %+v", got)
	}
	if got := Filter(places, "  ", placeFields); len(got) != 3 {
		t.Fatalf("blank query kept %d records", len(got))
	}
	if got := Filter(places, "park", placeFields); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("category filter = %+v", got)
	}
}

func TestFilterIdempotent(t *testing.T) {
	places := []models.Place{
		{ID: 1, Name: "Night Market"},
		{ID: 2, Name: "Market Hall"},
		{ID: 3, Name: "Museum"},
	}
	first := Filter(places, "market", placeFields)
	second := Filter(places, "market", placeFields)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Filter not idempotent: %+v vs %+v", first, second)
	}
	again := Filter(first, "market", placeFields)
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("Filter on filtered list changed result: %+v vs %+v", first, again)
	}
}
