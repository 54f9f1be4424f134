package pseudonym

var ranks = []string{
	"Captain", "Admiral", "Major", "Sergeant", "Scout", "Ranger",
	"Navigator", "Quartermaster", "Pilot", "Warden", "Marshal", "Commodore",
}

var nouns = []string{
	"Otter", "Badger", "Falcon", "Heron", "Lynx", "Marten",
	"Osprey", "Puffin", "Raven", "Stoat", "Walrus", "Beaver",
	"Bison", "Condor", "Ferret", "Gecko", "Ibis", "Jackal",
	"Kestrel", "Lemur", "Moose", "Narwhal", "Pelican", "Wombat",
}

var adjectives = []string{
	"Bold", "Brave", "Calm", "Clever", "Curious", "Daring",
	"Eager", "Fearless", "Gentle", "Hardy", "Jolly", "Keen",
	"Lucky", "Mighty", "Nimble", "Patient", "Quick", "Quiet",
	"Steady", "Swift", "Thrifty", "Valiant", "Wise", "Zesty",
}
