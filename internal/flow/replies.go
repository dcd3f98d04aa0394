package flow

import (
	"fmt"
	"strings"

	"github.com/hadassaviagens/riobot/internal/models"
)

// MaxOffersPerReply caps how many catalog offers one reply lists.
const MaxOffersPerReply = 3

// Scripted reply texts for the Hadassa Rio channel.
const (
	replyPong = "pong"

	replyGroupRedirect = "Sou o bot da Hadassa Viagens 🙂 Me chama no privado para atendimento completo."

	replyQuotePrompt = "Perfeito! Vamos preparar seu orçamento ✈️\n\n" +
		"Por favor, me envie em uma única mensagem:\n" +
		"- Destino desejado\n" +
		"- Data aproximada da viagem\n" +
		"- Número de adultos e crianças\n" +
		"- Se deseja incluir aéreo (sim/não)\n\n" +
		"Exemplo:\n" +
		"Gramado, maio de 2025, 2 adultos e 1 criança, sem aéreo."

	replyDestinations = "*Alguns destinos que trabalhamos:*\n\n" +
		"*Brasil 🇧🇷*\n" +
		"- Jericoacoara, Porto de Galinhas, Gramado, Foz do Iguaçu\n" +
		"- Maragogi, Natal, Fortaleza, Bonito\n\n" +
		"*América do Sul 🌎*\n" +
		"- Buenos Aires, Bariloche, Ushuaia, Santiago\n\n" +
		"*Internacional 🌍*\n" +
		"- Israel, Egito, Europa, Dubai, Cancún\n\n" +
		"Me diga qual desses destinos você tem mais interesse 🙂"

	replyDestinationImageCaption = "Olha esse visual de Maceió 😍🌴"

	replyPromoPrompt = "Temos várias promoções rolando hoje ✈️🔥\n\n" +
		"Me diga qual destino você pensa em viajar (ex: Nordeste, Gramado, Buenos Aires, Cancún)\n" +
		"que eu vejo a melhor oferta pra você."

	replyHandoffAck = "Certo! Já estou te atendendo aqui mesmo 👨‍💼\n\n" +
		"Pode me contar com calma o que você precisa que eu vou te ajudar."

	replyQuestionsPrompt = "Claro! Posso te ajudar com dúvidas sobre:\n" +
		"- Documentos para viagem\n" +
		"- Bagagem\n" +
		"- Formas de pagamento e parcelamento\n" +
		"- Aéreo e conexões\n" +
		"- Taxas e regras das cias\n\n" +
		"Me conta qual é a sua dúvida 🙂"

	replyNotUnderstood = "Não entendi a opção 😅\n\n" +
		"Envie *1, 2, 3, 4 ou 5* ou digite *menu* para ver as opções novamente."

	replyQuestionAck = "Boa pergunta! Vou te responder direitinho em seguida 😉\n\n" +
		"Enquanto isso, se quiser ver os serviços, digite *menu*."

	replyHandoffContinue = "Entendi 👍\nMe conta mais detalhes ou, se preferir, digite *menu* para voltar ao início."

	replyFallback = "Olá! Digite *menu* ou *oi* para ver as opções de atendimento da Hadassa Viagens – Unidade Rio ✈️"
)

// mainMenuText renders the five-option menu, personalized with the sender's
// first name when known.
func mainMenuText(name string) string {
	return fmt.Sprintf("Olá, %s!\n", models.FirstName(name)) +
		"Seja muito bem-vindo(a) à Hadassa Viagens – Unidade Rio ✈️\n\n" +
		"Eu sou o Leandro, consultor responsável pela unidade.\n\n" +
		"Como posso te ajudar hoje?\n\n" +
		"*1* - Quero um orçamento\n" +
		"*2* - Ver destinos\n" +
		"*3* - Promoções disponíveis\n" +
		"*4* - Falar com um atendente\n" +
		"*5* - Dúvidas gerais\n\n" +
		"_Responda com o número da opção._"
}

// quoteAckText acknowledges a captured quote request for a destination.
func quoteAckText(destination string) string {
	return fmt.Sprintf("Perfeito, já anotei todas as informações para *%s* ✍️\n", destination) +
		"Vou buscar as melhores opções na nossa base e te retorno com os valores.\n\n" +
		"Se quiser ver outras possibilidades enquanto isso, pode digitar *menu*."
}

// promoAckText acknowledges a captured promotion interest, echoing the text.
func promoAckText(text string) string {
	return "Show! Vou buscar as melhores promoções para: " + text + " ✈️\n" +
		"Assim que eu tiver alguma condição especial, eu te aviso aqui.\n\n" +
		"Se quiser, pode digitar *menu* para ver outras opções."
}

// offersText formats up to MaxOffersPerReply catalog offers for a destination.
func offersText(destination string, offers []models.PackageOffer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Encontrei algumas opções automáticas para *%s* ✈️\n\n", destination)
	for i, offer := range offers {
		if i == MaxOffersPerReply {
			break
		}
		fmt.Fprintf(&b, "*Opção %d*\n", i+1)
		if offer.Code != "" {
			fmt.Fprintf(&b, "Código: %s\n", offer.Code)
		}
		dest := offer.Destination
		if dest == "" {
			dest = destination
		}
		fmt.Fprintf(&b, "Destino: %s\n", dest)
		if offer.Price != "" {
			fmt.Fprintf(&b, "Valor de referência: %s\n\n", offer.Price)
		}
	}
	b.WriteString("Esses são valores de tabela. Se quiser, ajusto para seu orçamento 😊")
	return b.String()
}
