package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type Product struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Price    float64            `bson:"price" json:"price"`
	ImageURL string             `bson:"imageUrl" json:"imageUrl"`
	Category string             `bson:"category" json:"category"`
	Version  int64              `bson:"version" json:"-"`
}

// ProductInput carries the client-supplied product fields for create and
// update.
type ProductInput struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Category string  `json:"category"`
}

func (p *Product) Set(in ProductInput) {
	p.Title = in.Title
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Category = in.Category
}

// Section is a static storefront section.
type Section struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Size     string `json:"size,omitempty"`
	LinkURL  string `json:"linkUrl"`
}

var Sections = []Section{
	{ID: 1, Title: "hats", ImageURL: "https://i.ibb.co/cvpntL1/hats.png", LinkURL: "/shop/hats"},
	{ID: 2, Title: "jackets", ImageURL: "https://i.ibb.co/px2tCc3/jackets.png", LinkURL: "/shop/jackets"},
	{ID: 3, Title: "sneakers", ImageURL: "https://i.ibb.co/0jqHpnp/sneakers.png", LinkURL: "/shop/sneakers"},
	{ID: 4, Title: "womens", ImageURL: "https://i.ibb.co/GCCdy8t/womens.png", Size: "large", LinkURL: "/shop/womens"},
	{ID: 5, Title: "mens", ImageURL: "https://i.ibb.co/R70vBrQ/men.png", Size: "large", LinkURL: "/shop/mens"},
}
