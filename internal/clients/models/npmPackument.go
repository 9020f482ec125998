package models

type NpmDistTagsResponse struct {
	DistTags NpmDistTags `json:"dist-tags"`
}

type NpmDistTags struct {
	Latest string `json:"latest"`
}

type NpmPackument struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Homepage    string      `json:"homepage"`
	License     string      `json:"license"`
	DistTags    NpmDistTags `json:"dist-tags"`
}
