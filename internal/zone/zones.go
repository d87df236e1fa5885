package zone

// Default is the zone covering Ampang.
const Default = "SGR01"

// builtin lists the zones shipped with the binary. Selangor and the Federal
// Territories are complete; other states carry their most populous zones.
var builtin = []Zone{
	{Code: "JHR01", State: "Johor", Label: "Pulau Aur dan Pulau Pemanggil"},
	{Code: "JHR02", State: "Johor", Label: "Johor Bahru, Kota Tinggi, Mersing, Kulai"},
	{Code: "JHR03", State: "Johor", Label: "Kluang, Pontian"},
	{Code: "JHR04", State: "Johor", Label: "Batu Pahat, Muar, Segamat, Gemas Johor, Tangkak"},
	{Code: "KDH01", State: "Kedah", Label: "Kota Setar, Kubang Pasu, Pokok Sena"},
	{Code: "KDH02", State: "Kedah", Label: "Kuala Muda, Yan, Pendang"},
	{Code: "KTN01", State: "Kelantan", Label: "Bachok, Kota Bharu, Machang, Pasir Mas, Pasir Puteh, Tanah Merah, Tumpat, Kuala Krai, Mukim Chiku"},
	{Code: "MLK01", State: "Melaka", Label: "Seluruh Negeri Melaka"},
	{Code: "NGS01", State: "Negeri Sembilan", Label: "Tampin, Jempol"},
	{Code: "NGS02", State: "Negeri Sembilan", Label: "Jelebu, Kuala Pilah, Rembau"},
	{Code: "NGS03", State: "Negeri Sembilan", Label: "Port Dickson, Seremban"},
	{Code: "PHG02", State: "Pahang", Label: "Kuantan, Pekan, Muadzam Shah"},
	{Code: "PLS01", State: "Perlis", Label: "Kangar, Padang Besar, Arau"},
	{Code: "PNG01", State: "Pulau Pinang", Label: "Seluruh Negeri Pulau Pinang"},
	{Code: "PRK02", State: "Perak", Label: "Kuala Kangsar, Sg. Siput, Ipoh, Batu Gajah, Kampar"},
	{Code: "SBH07", State: "Sabah", Label: "Kota Kinabalu, Ranau, Kota Belud, Tuaran, Penampang, Papar, Putatan"},
	{Code: "SGR01", State: "Selangor", Label: "Gombak, Petaling, Sepang, Hulu Langat, Hulu Selangor, Shah Alam"},
	{Code: "SGR02", State: "Selangor", Label: "Kuala Selangor, Sabak Bernam"},
	{Code: "SGR03", State: "Selangor", Label: "Klang, Kuala Langat"},
	{Code: "SWK08", State: "Sarawak", Label: "Kuching, Bau, Lundu, Sematan"},
	{Code: "TRG01", State: "Terengganu", Label: "Kuala Terengganu, Marang, Kuala Nerus"},
	{Code: "WLY01", State: "Wilayah Persekutuan", Label: "Kuala Lumpur, Putrajaya"},
	{Code: "WLY02", State: "Wilayah Persekutuan", Label: "Labuan"},
}

func init() {
	RegisterBuiltin()
}

// RegisterBuiltin registers the shipped zones. Call after Clear to restore them.
func RegisterBuiltin() {
	for _, z := range builtin {
		Register(z)
	}
}
