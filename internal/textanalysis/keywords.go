package textanalysis

// categoryKeywords are matched as plain substrings of the normalized query,
// so stems like "tecnolog" cover every inflection.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"technology", []string{
		"celular", "telefono", "smartphone", "iphone", "laptop", "computadora", "notebook",
		"tablet", "auricular", "gaming", "consola", "televisor", "camara", "monitor",
		"teclado", "tecnolog", "electronic",
	}},
	{"clothing", []string{
		"ropa", "camisa", "remera", "pantalon", "vestido", "zapato", "zapatilla",
		"calzado", "campera", "chaqueta", "moda", "jean",
	}},
	{"home", []string{
		"hogar", "casa", "mueble", "cocina", "sofa", "colchon", "decoracion",
		"lampara", "electrodomestic", "heladera",
	}},
	{"sports", []string{
		"deporte", "deportiv", "futbol", "pelota", "bicicleta", "gimnasio", "fitness",
		"running", "raqueta", "pesas",
	}},
	{"food", []string{
		"comida", "alimento", "bebida", "snack", "cafe", "yerba", "chipa", "carne",
		"fruta", "verdura", "restaurante",
	}},
	{"books", []string{
		"libro", "novela", "lectura", "revista", "comic", "editorial",
	}},
	{"toys", []string{
		"juguete", "muneca", "peluche", "lego", "rompecabezas", "infantil",
	}},
	{"beauty", []string{
		"belleza", "maquillaje", "perfume", "crema", "cosmetic", "shampoo", "labial",
		"skincare",
	}},
}

// Intents in priority order; the first one with a matching trigger wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []keyword
}{
	{IntentBuy, compile("compr*", "quiero", "necesit*", "adquirir", "pedir", "llevar")},
	{IntentCompare, compile("compar*", "versus", "vs", "diferencia*", "cual es mejor")},
	{IntentBrowse, compile("ver", "mirar", "explorar", "buscar", "busco", "opciones", "catalogo")},
	{IntentPrice, compile(
		"precio*", "cuanto cuesta", "cuanto sale", "cuanto vale", "costo*", "barat*",
		"oferta*", "descuento*", "economic*",
	)},
	{IntentInfo, compile(
		"informacion", "caracteristica*", "especificacion*", "detalle*", "como funciona",
		"que es", "ficha tecnica",
	)},
}

var (
	positiveKeywords = compile(
		"bueno", "buena", "buenos", "buenas", "excelente*", "mejor", "genial", "calidad",
		"recomendad*", "lindo", "linda", "perfecto", "perfecta", "confiable",
	)
	negativeKeywords = compile(
		"malo", "mala", "malos", "malas", "peor", "roto", "rota", "defectuos*", "problema*",
		"caro", "cara", "horrible", "queja*", "falla*",
	)
)

// Urgency tiers, checked high to low.
var urgencyTiers = []struct {
	score    float64
	keywords []keyword
}{
	{0.9, compile("urgente", "urgencia", "hoy", "hoy mismo", "ahora", "inmediat*", "ya", "lo antes posible")},
	{0.6, compile("pronto", "esta semana", "rapido", "rapida", "cuanto antes", "manana")},
	{0.2, compile("sin apuro", "sin prisa", "cuando pueda", "algun dia", "eventualmente", "no hay apuro")},
}

// DefaultUrgency is reported when no urgency tier matches.
const DefaultUrgency = 0.5

var saleTypeKeywords = []struct {
	saleType SaleType
	keywords []keyword
}{
	{SaleTypeDirecta, compile("venta directa", "directa", "directo", "en stock", "disponible*", "al instante")},
	{SaleTypePedido, compile("pedido", "encargo", "por encargo", "bajo pedido", "a medida", "personalizad*")},
	{SaleTypeDelivery, compile("delivery", "envio*", "a domicilio", "retiro", "pickup")},
}

var (
	upperBoundHints = compile("menos de", "maximo", "hasta", "tope", "barat*")
	lowerBoundHints = compile("mas de", "desde", "minimo", "mayor a")
)
