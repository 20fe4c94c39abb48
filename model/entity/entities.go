package entity

// All lists every persisted entity, in migration order.
func All() []interface{} {
	return []interface{}{
		&AdminUser{},
		&Setting{},
		&Proposal{},
		&ProposalResponse{},
		&Page{},
		&Post{},
		&Media{},
	}
}
