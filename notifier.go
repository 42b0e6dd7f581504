package main

import "log"

// Notifier runs the notification sweep: detect price drops per source,
// cross-reference with every user's watchlists, mail matching users.
type Notifier struct {
	database *Database
	mailer   MailSender
}

func NewNotifier(database *Database, mailer MailSender) *Notifier {
	return &Notifier{database: database, mailer: mailer}
}

// Run executes one sweep and returns the number of notifications sent.
// A user gets at most one mail per source no matter how many of their
// watched products dropped, and one user's delivery failure never
// blocks the rest of the batch. Watchlists are snapshotted up front so
// the sweep sees a consistent view; edits made while it runs are
// picked up on the next one.
func (n *Notifier) Run() (int, error) {
	drops := make(map[string]DropSet)
	for _, source := range allSources {
		set, err := FindDrops(n.database, source)
		if err != nil {
			return 0, err
		}
		drops[source] = set
		log.Printf("[Notifier] %s: %d products with price drops", source, len(set))
	}

	users, err := n.database.GetUsers()
	if err != nil {
		return 0, err
	}
	watchlists, err := n.database.WatchlistSnapshot()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		for _, source := range allSources {
			if !watchlistHasDrop(watchlists[user.ID][source], drops[source]) {
				continue
			}
			if err := n.mailer.Send(user.Email); err != nil {
				log.Printf("[Notifier] delivery failed for %s: %v", user.Email, err)
				continue
			}
			sent++
		}
	}

	log.Printf("[Notifier] Sweep completed: %d notifications sent", sent)
	return sent, nil
}

// watchlistHasDrop reports whether any watched product is in the drop
// set, stopping at the first match.
func watchlistHasDrop(watched []uint, drops DropSet) bool {
	for _, productID := range watched {
		if drops.Contains(productID) {
			return true
		}
	}
	return false
}
