package seed

// StationSeed is one entry of the fixed catalog the seeder provisions
type StationSeed struct {
	Name     string
	NameKana string
	Lat      float64
	Lng      float64
}

// YamanoteStations is the JR Yamanote line station list the catalog
// ships with.
var YamanoteStations = []StationSeed{
	{Name: "東京", NameKana: "トウキョウ", Lat: 35.6812, Lng: 139.7671},
	{Name: "有楽町", NameKana: "ユウラクチョウ", Lat: 35.6754, Lng: 139.7634},
	{Name: "新橋", NameKana: "シンバシ", Lat: 35.6658, Lng: 139.7583},
	{Name: "浜松町", NameKana: "ハママツチョウ", Lat: 35.6556, Lng: 139.7570},
	{Name: "田町", NameKana: "タマチ", Lat: 35.6456, Lng: 139.7476},
	{Name: "品川", NameKana: "シナガワ", Lat: 35.6289, Lng: 139.7390},
	{Name: "大崎", NameKana: "オオサキ", Lat: 35.6197, Lng: 139.7286},
	{Name: "五反田", NameKana: "ゴタンダ", Lat: 35.6258, Lng: 139.7238},
	{Name: "目黒", NameKana: "メグロ", Lat: 35.6332, Lng: 139.7156},
	{Name: "恵比寿", NameKana: "エビス", Lat: 35.6466, Lng: 139.7100},
	{Name: "渋谷", NameKana: "シブヤ", Lat: 35.6580, Lng: 139.7016},
	{Name: "原宿", NameKana: "ハラジュク", Lat: 35.6702, Lng: 139.7026},
	{Name: "代々木", NameKana: "ヨヨギ", Lat: 35.6832, Lng: 139.7022},
	{Name: "新宿", NameKana: "シンジュク", Lat: 35.6896, Lng: 139.7006},
	{Name: "新大久保", NameKana: "シンオオクボ", Lat: 35.7007, Lng: 139.7006},
	{Name: "高田馬場", NameKana: "タカダノババ", Lat: 35.7122, Lng: 139.7037},
	{Name: "目白", NameKana: "メジロ", Lat: 35.7211, Lng: 139.7060},
	{Name: "池袋", NameKana: "イケブクロ", Lat: 35.7295, Lng: 139.7109},
	{Name: "大塚", NameKana: "オオツカ", Lat: 35.7312, Lng: 139.7288},
	{Name: "巣鴨", NameKana: "スガモ", Lat: 35.7339, Lng: 139.7394},
	{Name: "駒込", NameKana: "コマゴメ", Lat: 35.7369, Lng: 139.7467},
	{Name: "田端", NameKana: "タバタ", Lat: 35.7378, Lng: 139.7607},
	{Name: "西日暮里", NameKana: "ニシニッポリ", Lat: 35.7321, Lng: 139.7668},
	{Name: "日暮里", NameKana: "ニッポリ", Lat: 35.7277, Lng: 139.7710},
	{Name: "鶯谷", NameKana: "ウグイスダニ", Lat: 35.7207, Lng: 139.7782},
	{Name: "上野", NameKana: "ウエノ", Lat: 35.7139, Lng: 139.7774},
	{Name: "御徒町", NameKana: "オカチマチ", Lat: 35.7075, Lng: 139.7745},
	{Name: "秋葉原", NameKana: "アキハバラ", Lat: 35.6984, Lng: 139.7731},
	{Name: "神田", NameKana: "カンダ", Lat: 35.6919, Lng: 139.7709},
}
